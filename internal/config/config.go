package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string

	// Auth
	SessionSecret string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string

	// Uploads
	UploadsDir      string
	MaxUploadBytes  int64
	TempMaxAge      time.Duration
	CleanupInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		SessionSecret: getEnv("SESSION_SECRET", "ar-viewer-secret-key"),
		TokenTTL:      getDuration("TOKEN_TTL", 7*24*time.Hour),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		UploadsDir:      getEnv("UPLOADS_DIR", "uploads"),
		MaxUploadBytes:  getInt64("MAX_UPLOAD_MB", 100) << 20,
		TempMaxAge:      getDuration("TEMP_MAX_AGE", 24*time.Hour),
		CleanupInterval: getDuration("CLEANUP_INTERVAL", time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.UploadsDir == "" {
		return fmt.Errorf("UPLOADS_DIR is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.TempMaxAge <= 0 {
		return fmt.Errorf("TEMP_MAX_AGE must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
