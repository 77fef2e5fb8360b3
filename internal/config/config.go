// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bike-wallet/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort     string
	LogLevel       string
	AllowedOrigins []string // CORS; comma-separated in CORS_ALLOWED_ORIGINS
	DB             db.Config
	Lock           LockConfig
}

// LockConfig controls the per-owner lock held across load-mutate-save.
type LockConfig struct {
	RedisURL        string        // Empty means an in-process lock
	TTL             time.Duration // Redis lock expiry
	WaitTimeout     time.Duration // How long a request waits for the lock
	MaxSaveAttempts int           // Retries on a version conflict
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first if present; real environment variables win.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	lockTTL, err := time.ParseDuration(getEnv("LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}
	lockWait, err := time.ParseDuration(getEnv("LOCK_WAIT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_WAIT: %w", err)
	}
	maxAttempts, err := strconv.Atoi(getEnv("MAX_SAVE_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_SAVE_ATTEMPTS: %w", err)
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("invalid MAX_SAVE_ATTEMPTS: must be at least 1, got %d", maxAttempts)
	}

	return &AppConfig{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "walletdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Lock: LockConfig{
			RedisURL:        os.Getenv("REDIS_URL"),
			TTL:             lockTTL,
			WaitTimeout:     lockWait,
			MaxSaveAttempts: maxAttempts,
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
