// Package config loads sms-ledger settings from files, .env and the environment.
package config

import (
	"os"
	"path/filepath"

	"sms-ledger/internal/logging"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory or its parent, if one exists.
// Variables already present in the environment win over the file.
// It returns the path that was loaded, or "" when no file was found.
func LoadEnv() (string, error) {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", nil
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg *Config) logging.Logger {
	if cfg == nil {
		return logging.GetLogger()
	}
	return logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
}
