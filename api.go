// api.go

package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	store    Storage
	payments PaymentIntents
}

func NewServer(store Storage, payments PaymentIntents) *Server {
	return &Server{store: store, payments: payments}
}

// Router builds the engine with the CORS allow-list installed before any
// route, so disallowed origins are rejected without touching the store.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", s.healthCheck)

	// Medicines
	r.GET("/healthHub", s.listMedicines)
	r.POST("/healthHub", s.createMedicine)
	r.GET("/my-medicines", s.myMedicines)
	r.GET("/medicines/discount", s.discountedMedicines)
	r.GET("/best-sellers", s.bestSellers)

	// Slider / advertisements
	r.GET("/slider", s.activeSlider)
	r.GET("/advertised-medicines", s.advertisedMedicines)
	r.POST("/advertised-medicines", s.requestAdvertisement)
	r.PATCH("/advertised-medicines/:id/toggle", s.toggleSlider)

	// Users
	r.GET("/users", s.listUsers)
	r.PATCH("/users/:id/role", s.setUserRole)
	r.POST("/user", s.upsertUser)
	r.GET("/user/role/:email", s.userRole)

	// Categories
	r.GET("/categories", s.listCategories)
	r.POST("/categories", s.createCategory)
	r.PATCH("/categories/:id", s.renameCategory)
	r.DELETE("/categories/:id", s.deleteCategory)

	// Payments
	r.GET("/payments", s.listPayments)
	r.POST("/payments", s.createPayment)
	r.GET("/payments/by-seller", s.paymentsBySeller)
	r.GET("/payments/user", s.paymentsByBuyer)
	r.PATCH("/payments/:id", s.setPaymentStatus)
	r.GET("/sales", s.salesReport)
	r.GET("/admin/stats", s.adminStats)
	r.POST("/create-payment-intent", s.createPaymentIntent)

	return r
}

func (s *Server) healthCheck(c *gin.Context) {
	c.String(200, "health hub server is running")
}

// ----- Medicines -----

func (s *Server) listMedicines(c *gin.Context) {
	medicines, err := s.store.Medicines(c.Request.Context(), c.Query("category"))
	if err != nil {
		log.Println("Error fetching medicines:", err)
		c.JSON(500, gin.H{"message": "Failed to fetch medicines"})
		return
	}
	c.JSON(200, medicines)
}

func (s *Server) createMedicine(c *gin.Context) {
	var m Medicine
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	id, err := s.store.CreateMedicine(c.Request.Context(), m)
	if err != nil {
		log.Println("Error inserting medicine:", err)
		c.JSON(500, gin.H{"message": "Failed to create medicine"})
		return
	}
	c.JSON(201, gin.H{"acknowledged": true, "insertedId": id})
}

func (s *Server) myMedicines(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(400, gin.H{"message": "Email required"})
		return
	}
	medicines, err := s.store.MedicinesBySeller(c.Request.Context(), email)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch medicines"})
		return
	}
	c.JSON(200, medicines)
}

func (s *Server) discountedMedicines(c *gin.Context) {
	medicines, err := s.store.DiscountedMedicines(c.Request.Context())
	if err != nil {
		log.Println("Error fetching discounted medicines:", err)
		c.JSON(500, gin.H{"message": "Failed to fetch discounted medicines"})
		return
	}
	c.JSON(200, medicines)
}

func (s *Server) bestSellers(c *gin.Context) {
	medicines, err := s.store.BestSellers(c.Request.Context(), 8)
	if err != nil {
		log.Println("Error fetching best sellers:", err)
		c.JSON(500, gin.H{"message": "Server error"})
		return
	}
	c.JSON(200, medicines)
}

// ----- Slider / advertisements -----

func (s *Server) activeSlider(c *gin.Context) {
	items, err := s.store.SliderItems(c.Request.Context(), true)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch slider items"})
		return
	}
	c.JSON(200, items)
}

func (s *Server) advertisedMedicines(c *gin.Context) {
	items, err := s.store.SliderItems(c.Request.Context(), false)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch advertised medicines"})
		return
	}
	c.JSON(200, items)
}

func (s *Server) requestAdvertisement(c *gin.Context) {
	var ad SliderItem
	if err := c.ShouldBindJSON(&ad); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	ad.IsActive = false // ads start inactive until an admin enables them
	id, err := s.store.CreateSliderItem(c.Request.Context(), ad)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to submit advertisement request"})
		return
	}
	c.JSON(201, gin.H{"acknowledged": true, "insertedId": id})
}

func (s *Server) toggleSlider(c *gin.Context) {
	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	n, err := s.store.SetSliderActive(c.Request.Context(), c.Param("id"), body.IsActive)
	if err != nil {
		log.Println("Error toggling slider status:", err)
		c.JSON(500, gin.H{"message": "Failed to update slider status"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "modifiedCount": n})
}

// ----- Users -----

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.store.Users(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch users"})
		return
	}
	c.JSON(200, users)
}

func (s *Server) setUserRole(c *gin.Context) {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	n, err := s.store.SetUserRole(c.Request.Context(), c.Param("id"), body.Role)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to update user role"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "modifiedCount": n})
}

// upsertUser keeps one user document per email: a repeat login only
// refreshes last_loggedIn, a first login stores created_at as well.
func (s *Server) upsertUser(c *gin.Context) {
	var u User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)

	existing, err := s.store.UserByEmail(c.Request.Context(), u.Email)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to save user"})
		return
	}
	if existing != nil {
		n, err := s.store.TouchLastLogin(c.Request.Context(), u.Email, now)
		if err != nil {
			c.JSON(500, gin.H{"message": "Failed to save user"})
			return
		}
		c.JSON(200, gin.H{"acknowledged": true, "modifiedCount": n})
		return
	}

	u.CreatedAt = now
	u.LastLoggedIn = now
	id, err := s.store.CreateUser(c.Request.Context(), u)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to save user"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "insertedId": id})
}

func (s *Server) userRole(c *gin.Context) {
	u, err := s.store.UserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch user"})
		return
	}
	if u == nil {
		c.JSON(404, gin.H{"message": "user not found."})
		return
	}
	c.JSON(200, gin.H{"role": u.Role})
}

// ----- Categories -----

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.CategoriesWithCounts(c.Request.Context())
	if err != nil {
		log.Println("Error fetching categories:", err)
		c.JSON(500, gin.H{"message": "Failed to fetch categories"})
		return
	}
	c.JSON(200, categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var cat Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	id, err := s.store.CreateCategory(c.Request.Context(), cat)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to create category"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "insertedId": id})
}

func (s *Server) renameCategory(c *gin.Context) {
	var body struct {
		CategoryName string `json:"categoryName"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	n, err := s.store.RenameCategory(c.Request.Context(), c.Param("id"), body.CategoryName)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to update category"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "modifiedCount": n})
}

func (s *Server) deleteCategory(c *gin.Context) {
	n, err := s.store.DeleteCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to delete category"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "deletedCount": n})
}

// ----- Payments -----

func (s *Server) listPayments(c *gin.Context) {
	payments, err := s.store.Payments(c.Request.Context())
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch payments"})
		return
	}
	c.JSON(200, payments)
}

func (s *Server) createPayment(c *gin.Context) {
	var p Payment
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(400, gin.H{"success": false, "message": "invalid input"})
		return
	}
	p.Date = time.Now().UTC()
	id, err := s.store.CreatePayment(c.Request.Context(), p)
	if err != nil {
		log.Println("Error saving payment:", err)
		c.JSON(500, gin.H{"success": false, "message": "Failed to save payment"})
		return
	}
	c.JSON(201, gin.H{"success": true, "message": "Payment saved successfully", "insertedId": id})
}

func (s *Server) paymentsBySeller(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(400, gin.H{"message": "Seller email is required"})
		return
	}
	payments, err := s.store.PaymentsBySeller(c.Request.Context(), email)
	if err != nil {
		log.Println("Failed to fetch seller payments:", err)
		c.JSON(500, gin.H{"message": "Failed to fetch payments"})
		return
	}
	c.JSON(200, payments)
}

func (s *Server) paymentsByBuyer(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(400, gin.H{"message": "Email is required"})
		return
	}
	payments, err := s.store.PaymentsByBuyer(c.Request.Context(), email)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to fetch user payments"})
		return
	}
	c.JSON(200, payments)
}

func (s *Server) setPaymentStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	n, err := s.store.SetPaymentStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		c.JSON(500, gin.H{"message": "Failed to update payment status"})
		return
	}
	c.JSON(200, gin.H{"acknowledged": true, "modifiedCount": n})
}

// salesReport flattens every cart item of every payment into one row.
// Reads are not snapshot-consistent with concurrent writes; the report
// is best effort.
func (s *Server) salesReport(c *gin.Context) {
	payments, err := s.store.Payments(c.Request.Context())
	if err != nil {
		log.Println("Failed to fetch sales data:", err)
		c.JSON(500, gin.H{"message": "Failed to fetch sales data"})
		return
	}
	sales := []SalesRecord{}
	for _, p := range payments {
		date := p.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}
		for _, item := range p.CartItems {
			qty := item.Quantity
			if qty == 0 {
				qty = 1
			}
			sales = append(sales, SalesRecord{
				MedicineName: item.Title,
				SellerEmail:  item.SellerEmail,
				BuyerEmail:   p.BuyerEmail,
				TotalPrice:   item.Price * float64(qty),
				Date:         date,
				Status:       item.Status,
			})
		}
	}
	c.JSON(200, sales)
}

func (s *Server) adminStats(c *gin.Context) {
	payments, err := s.store.Payments(c.Request.Context())
	if err != nil {
		log.Println("Error fetching admin stats:", err)
		c.JSON(500, gin.H{"message": "Failed to fetch admin stats"})
		return
	}
	var paid, pending float64
	for _, p := range payments {
		switch p.Status {
		case "paid":
			paid += p.Amount
		case "pending":
			pending += p.Amount
		}
	}
	c.JSON(200, gin.H{"paid": paid, "pending": pending})
}

func (s *Server) createPaymentIntent(c *gin.Context) {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{"message": "invalid input"})
		return
	}
	secret, err := s.payments.CreateIntent(body.Amount)
	if err != nil {
		log.Println("Stripe error:", err)
		c.JSON(500, gin.H{"message": "Failed to create payment intent"})
		return
	}
	c.JSON(200, gin.H{"clientSecret": secret})
}
