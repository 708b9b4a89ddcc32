package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed by reference; nothing reads the
// environment after Load returns.
type Config struct {
	HTTPAddr    string
	DatabaseURL string

	JWTSecret []byte
	JWTIssuer string

	ClientBaseURL string
	ResendAPIKey  string
	EmailFrom     string

	CookieDomain  string
	SecureCookies bool

	SessionTTL          time.Duration
	VerificationCodeTTL time.Duration
	ResetTokenTTL       time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer: os.Getenv("JWT_ISSUER"),

		ClientBaseURL: getenv("CLIENT_URL", "http://localhost:5173"),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     getenv("EMAIL_FROM", "no-reply@example.com"),

		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		SecureCookies: os.Getenv("COOKIE_SECURE") != "false",

		SessionTTL:          7 * 24 * time.Hour,
		VerificationCodeTTL: 5 * time.Minute,
		ResetTokenTTL:       time.Hour,
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
