package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port            int
	DBPath          string
	LogLevel        string
	AllowedOrigins  []string
	FetchTimeout    time.Duration
	StrictFetch     bool
	CleanupEnabled  bool
	CleanupInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		DBPath:         getEnv("DB_PATH", "staffing.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"), ","),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	config.Port = port

	fetchTimeout, err := strconv.Atoi(getEnv("FETCH_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	config.FetchTimeout = time.Duration(fetchTimeout) * time.Second

	config.StrictFetch, err = strconv.ParseBool(getEnv("STRICT_FETCH", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid STRICT_FETCH: %w", err)
	}

	config.CleanupEnabled, err = strconv.ParseBool(getEnv("CLEANUP_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_ENABLED: %w", err)
	}

	cleanupInterval, err := strconv.Atoi(getEnv("CLEANUP_INTERVAL", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_INTERVAL: %w", err)
	}
	if cleanupInterval < 1 {
		return nil, fmt.Errorf("invalid CLEANUP_INTERVAL: must be at least 1 minute")
	}
	config.CleanupInterval = time.Duration(cleanupInterval) * time.Minute

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
