package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"leadboard/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `validate:"required"`
	Data      DataConfig      `validate:"required"`
	Admin     AdminConfig     `validate:"required"`
	Dashboard DashboardConfig `validate:"required"`
	LogLevel  string          `validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string `validate:"required,numeric"`
	GinMode     string `validate:"oneof=debug release test"`
	CORSOrigins []string
	MaxUploadMB int `validate:"min=1,max=512"`
}

// DataConfig holds the location of the single dataset file
type DataConfig struct {
	File string `validate:"required"`
}

// AdminConfig holds the shared administrator credential and session settings.
// PasswordHash, when set, takes precedence over Password.
type AdminConfig struct {
	Password      string `validate:"required_without=PasswordHash"`
	PasswordHash  string
	SessionSecret string
	SessionTTL    time.Duration `validate:"min=1m"`
	LoginPerMin   int           `validate:"min=1"`
}

// DashboardConfig holds chart and caching settings
type DashboardConfig struct {
	TopGroups   int           `validate:"min=1"`
	TopStatuses int           `validate:"min=1"`
	CacheTTL    time.Duration `validate:"min=0"`
	PageSize    int           `validate:"min=1"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Admin:     *loadAdminConfig(),
		Dashboard: *loadDashboardConfig(),
		LogLevel:  strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		CORSOrigins: splitCSV(getEnvOrDefault("CORS_ORIGINS", "")),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File: getEnvOrDefault("DATA_FILE", "data/base_leads.xlsx"),
	}
}

func loadAdminConfig() *AdminConfig {
	return &AdminConfig{
		Password:      getEnvOrDefault("ADMIN_PASSWORD", "admin2026"),
		PasswordHash:  getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", ""),
		SessionTTL:    getEnvDurationOrDefault("SESSION_TTL", 8*time.Hour),
		LoginPerMin:   getEnvIntOrDefault("LOGIN_ATTEMPTS_PER_MINUTE", 5),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		TopGroups:   getEnvIntOrDefault("TOP_GROUPS", 10),
		TopStatuses: getEnvIntOrDefault("TOP_STATUSES", 8),
		CacheTTL:    getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute),
		PageSize:    getEnvIntOrDefault("PAGE_SIZE", 20),
	}
}

var validate = validator.New()

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		appErr := errors.ConfigInvalid("invalid configuration")
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				appErr.Details = append(appErr.Details, fe.Namespace()+" failed "+fe.Tag())
			}
		}
		appErr.Cause = err
		return appErr
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
