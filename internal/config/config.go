package config

import (
	"os"
	"strconv"

	"mrrdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data processing settings
type DataConfig struct {
	// ExcelFile is an optional workbook served as the default source when no
	// upload has been made.
	ExcelFile string
	SheetName string
	// TargetYear is the calendar year month columns are detected for.
	TargetYear int
	// MaxUploadBytes caps the accepted upload size.
	MaxUploadBytes int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			ExcelFile:      getEnvOrDefault("EXCEL_FILE", ""),
			SheetName:      getEnvOrDefault("SHEET_NAME", "Sheet1"),
			TargetYear:     getEnvIntOrDefault("TARGET_YEAR", 2024),
			MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.SheetName == "" {
		return errors.ConfigInvalid("sheet name is required")
	}
	if config.Data.TargetYear < 1900 || config.Data.TargetYear > 2200 {
		return errors.ConfigInvalid("target year out of range")
	}
	if config.Data.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("upload size cap must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
