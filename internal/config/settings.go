// Package config provides configuration for the denuncias tools.
//
// Two concerns live here:
//   - Settings: process tuning read from the environment (ports, model,
//     workbook location). An optional .env file is loaded first.
//   - Credentials: the Gemini API key and the logging webhook URL, resolved
//     per use from a static bundled layer and a persisted local store.
//     See Resolver.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds process configuration.
//
// It is immutable after LoadSettings returns.
type Settings struct {
	Environment string
	LogLevel    string

	// HTTP listeners
	Port     string // intake API
	SinkPort string // sheet sink

	// Gemini endpoint
	GeminiBaseURL string
	GeminiModel   string

	// HTTPTimeout bounds outbound calls. Zero means no client-side timeout.
	HTTPTimeout time.Duration

	// SettingsFile is the persisted credential store.
	SettingsFile string

	// Workbook behind the sheet sink
	SheetFile     string
	SheetName     string
	SheetTimezone string
}

// LoadSettings loads settings from the environment with defaults.
//
// A .env file in the working directory is loaded first when present. It never
// overrides variables already set in the environment.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		Environment: os.Getenv("ENVIRONMENT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		Port:     getEnvOrDefault("PORT", "8080"),
		SinkPort: getEnvOrDefault("SINK_PORT", "8090"),

		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 0),

		SettingsFile: getEnvOrDefault("SETTINGS_FILE", defaultSettingsFile()),

		SheetFile:     getEnvOrDefault("SHEET_FILE", "denuncias.xlsx"),
		SheetName:     getEnvOrDefault("SHEET_NAME", "Denuncias"),
		SheetTimezone: getEnvOrDefault("SHEET_TIMEZONE", "America/El_Salvador"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that settings are usable.
func (s *Settings) Validate() error {
	if s.GeminiBaseURL == "" {
		return fmt.Errorf("GEMINI_BASE_URL cannot be empty")
	}
	if s.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative, got %v", s.HTTPTimeout)
	}
	if s.SettingsFile == "" {
		return fmt.Errorf("SETTINGS_FILE cannot be empty")
	}
	if s.SheetName == "" {
		return fmt.Errorf("SHEET_NAME cannot be empty")
	}
	return nil
}

// SheetLocation returns the timezone used for sheet timestamps, UTC when the
// configured zone is unknown.
func (s *Settings) SheetLocation() *time.Location {
	loc, err := time.LoadLocation(s.SheetTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func defaultSettingsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".denuncias.env"
	}
	return filepath.Join(dir, "denuncias", "settings.env")
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
