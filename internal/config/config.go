package config

import (
	"os"
	"strconv"
	"strings"

	"finsight/domain/finance"
	"finsight/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Upload   UploadConfig
	Analysis AnalysisConfig
	Impute   ImputeConfig
	LogLevel string
}

// DatabaseConfig holds the optional upload-history store settings
type DatabaseConfig struct {
	URL    string
	Driver string
}

// Enabled reports whether upload history should be persisted
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// UploadConfig holds upload handling settings
type UploadConfig struct {
	Dir         string
	MaxUploadMB int
}

// MaxBytes returns the upload limit in bytes
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxUploadMB) * 1024 * 1024
}

// AnalysisConfig holds page computation settings
type AnalysisConfig struct {
	SavingsStrategy   finance.SavingsStrategy
	MaxConcurrentFits int
	ClusterSeed       int64
	GoalHeadroom      float64
}

// ImputeConfig holds the fixed paths of the offline imputation pass
type ImputeConfig struct {
	InputPath  string
	OutputPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	strategy, err := finance.ParseSavingsStrategy(getEnvOrDefault("SAVINGS_STRATEGY", string(finance.SavingsDirect)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	config := &Config{
		Database: DatabaseConfig{
			URL:    os.Getenv("DATABASE_URL"),
			Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			APIPort: getEnvOrDefault("API_PORT", "8081"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Upload: UploadConfig{
			Dir:         getEnvOrDefault("UPLOAD_DIR", "./uploads"),
			MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
		},
		Analysis: AnalysisConfig{
			SavingsStrategy:   strategy,
			MaxConcurrentFits: getEnvIntOrDefault("MAX_CONCURRENT_FITS", 2),
			ClusterSeed:       getEnvInt64OrDefault("CLUSTER_SEED", 42),
			GoalHeadroom:      getEnvFloatOrDefault("SAVINGS_GOAL_HEADROOM", 5000),
		},
		Impute: ImputeConfig{
			InputPath:  getEnvOrDefault("IMPUTE_INPUT", "personal_finance_employees_V1.csv"),
			OutputPath: getEnvOrDefault("IMPUTE_OUTPUT", "personal_finance_employees_filled.csv"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite")
	}
	if config.Upload.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Analysis.MaxConcurrentFits <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_FITS must be positive")
	}
	if config.Analysis.GoalHeadroom < 0 {
		return errors.ConfigInvalid("SAVINGS_GOAL_HEADROOM must not be negative")
	}
	if strings.TrimSpace(config.Impute.InputPath) == "" || strings.TrimSpace(config.Impute.OutputPath) == "" {
		return errors.ConfigInvalid("imputation paths are required")
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
