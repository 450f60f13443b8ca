// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
)

// Config holds application configuration.
type Config struct {
	Port        string
	DBPath      string
	JWTSecret   string
	BankURL     string
	InsightsURL string
	InsightsKey string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string

	// ReminderSchedule is a cron spec for the due-date reminder job.
	ReminderSchedule string
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./data/divvy.db"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		BankURL:     getEnv("BANK_URL", "http://localhost:9090"),
		InsightsURL: getEnv("INSIGHTS_URL", "http://localhost:9091/generate"),
		InsightsKey: getEnv("INSIGHTS_API_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@divvy.local"),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.BankURL == "" {
		return nil, fmt.Errorf("BANK_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
