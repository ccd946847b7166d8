// Package config provides configuration for parley.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Generation backend
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Timeouts
	GenerationTimeout time.Duration

	// TokenDelay is the artificial inter-token delay used by the mock
	// generation client.
	TokenDelay time.Duration

	// AnalysisMaxAttempts bounds retries of the post-session analysis job.
	AnalysisMaxAttempts int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:            getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:         getEnv("DATABASE_URL", "file:parley.db?cache=shared&mode=rwc"),
		LLMBaseURL:          getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:           getEnv("LLM_API_KEY", ""),
		LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
		GenerationTimeout:   time.Duration(getEnvInt("GENERATION_TIMEOUT_MS", 120000)) * time.Millisecond,
		TokenDelay:          time.Duration(getEnvInt("TOKEN_DELAY_MS", 30)) * time.Millisecond,
		AnalysisMaxAttempts: getEnvInt("ANALYSIS_MAX_ATTEMPTS", 3),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
