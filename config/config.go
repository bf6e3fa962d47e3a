// Package config loads the service configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Path to the Google service-account credentials JSON. The same file
	// supplies the client_email used when sharing spreadsheets.
	GoogleCredentialsFile string

	// Spreadsheet holding one row per registered admin.
	AdminSheetID string

	JWTSecret string

	// SMTP delivery for security and reset codes.
	SMTPHost      string
	SMTPPort      int
	EmailUser     string
	EmailPassword string

	// Meta Graph API.
	WhatsAppAPIURL    string
	WhatsAppToken     string
	BusinessAccountID string

	// Cloudinary media storage.
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// Load reads .env (if any) and builds the config. Fields without which the
// service cannot run at all are validated here; provider credentials are
// checked lazily by the components that use them.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:                  getEnv("PORT", "3001"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		AdminSheetID:          os.Getenv("ADMIN_SHEET_ID"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		SMTPHost:              getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:              587,
		EmailUser:             os.Getenv("EMAIL_USER"),
		EmailPassword:         os.Getenv("EMAIL_PASSWORD"),
		WhatsAppAPIURL:        os.Getenv("WHATSAPP_API_URL"),
		WhatsAppToken:         os.Getenv("BEARER_TOKEN"),
		BusinessAccountID:     os.Getenv("BUSINESS_ACCOUNT_ID"),
		CloudinaryCloudName:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:      os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:   os.Getenv("CLOUDINARY_API_SECRET"),
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.SMTPPort); err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
		}
	}

	if cfg.AdminSheetID == "" {
		return nil, fmt.Errorf("ADMIN_SHEET_ID is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
