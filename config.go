// config.go

package main

import (
	"fmt"
	"log"
	"os"
)

var allowedOrigins = []string{
	"http://localhost:5173",            // local frontend
	"https://health-hub-7c64c.web.app", // deployed frontend
}

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	StripeKey string
	Env       string
	ClientURL string
}

// LoadConfig reads the process environment once at startup.
// All values are fixed for the lifetime of the process.
func LoadConfig() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		uri = fmt.Sprintf(
			"mongodb+srv://%s:%s@cluster0.xukamdp.mongodb.net/?retryWrites=true&w=majority&appName=Cluster0",
			os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
		)
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "healthHubDB"
	}

	cfg := Config{
		Port:      port,
		MongoURI:  uri,
		DBName:    dbName,
		StripeKey: os.Getenv("STRIPE_SECRET_KEY"),
		Env:       os.Getenv("NODE_ENV"),
		ClientURL: os.Getenv("CLIENT_URL"),
	}
	log.Printf("[config] PORT=%s DB_NAME=%s ENV=%s CLIENT_URL=%s", cfg.Port, cfg.DBName, cfg.Env, cfg.ClientURL)
	return cfg
}
