package config

import (
	"fmt"
	"os"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port              string
	Environment       string
	DatabaseURL       string
	SQLitePath        string
	LogLevel          string
	EncryptionKey     string
	WebhookSecret     string
	BillingAPIBaseURL string
	StorageProvider   string
	StorageDir        string
	StorageBaseURL    string
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("APP_ENV", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "./santodinheiro.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		EncryptionKey:     getEnv("ENCRYPTION_KEY", ""),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
		BillingAPIBaseURL: getEnv("BILLING_API_BASE_URL", "https://api.billing.example.com"),
		StorageProvider:   getEnv("STORAGE_PROVIDER", "local"),
		StorageDir:        getEnv("STORAGE_DIR", "./uploads"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", "no-reply@santodinheiro.app"),
	}

	if cfg.IsProduction() {
		if cfg.EncryptionKey == "" {
			return nil, fmt.Errorf("ENCRYPTION_KEY is required in production")
		}
		if cfg.WebhookSecret == "" {
			return nil, fmt.Errorf("WEBHOOK_SECRET is required in production")
		}
	}

	return cfg, nil
}

// IsProduction reports whether the app is running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
