package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	KafkaAddr   string
	ESURL       string
	ESUser      string
	ESPassword  string
	LogLevel    string
}

// Load reads configuration from .env (if present) and the process
// environment, once at startup.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment variables")
	}

	cfg := &Config{
		Addr:        getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		KafkaAddr:   os.Getenv("KAFKA_ADDRESS"),
		ESURL:       os.Getenv("ES_URL"),
		ESUser:      os.Getenv("ES_USER"),
		ESPassword:  os.Getenv("ES_PASSWORD"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
