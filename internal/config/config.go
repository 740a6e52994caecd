package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Upstream no-code data service
	UpstreamBaseURL  string
	UpstreamAPIKey   string
	UpstreamInstance string

	// Session tokens
	JWTSecret     string
	TokenValidity time.Duration

	// Widget behavior
	SiteCacheTTL      time.Duration
	SubmitMinInterval time.Duration

	// Outbound HTTP
	HTTPTimeout time.Duration
}

// Load loads configuration from the environment, with an optional .env file.
//
// NOCODEBACKEND_API_KEY is deliberately not required here: the gateway must
// start without it and fail per request with a config error on the proxy
// surface.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "4130"),
		UpstreamBaseURL:   getEnv("NOCODEBACKEND_BASE_URL", "https://openapi.nocodebackend.com"),
		UpstreamAPIKey:    getEnv("NOCODEBACKEND_API_KEY", ""),
		UpstreamInstance:  getEnv("NOCODEBACKEND_INSTANCE", "41300_indie_comments_v2"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenValidity:     getEnvAsDuration("TOKEN_VALIDITY", 24*time.Hour),
		SiteCacheTTL:      getEnvAsDuration("SITE_CACHE_TTL", 5*time.Minute),
		SubmitMinInterval: getEnvAsDuration("SUBMIT_MIN_INTERVAL", 3*time.Second),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.UpstreamInstance == "" {
		return nil, fmt.Errorf("NOCODEBACKEND_INSTANCE is required")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a
// default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
