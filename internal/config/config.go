// Package config provides configuration for the query engine.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the engine configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Audit database
	DatabaseURL string

	// Knowledge provider settings
	KnowledgeAPIURL   string
	KnowledgeCacheTTL time.Duration

	// Generative responder settings
	ResponderURL     string
	ResponderAPIKey  string
	ResponderModel   string
	ResponderTimeout time.Duration

	// Multi-capability fan-in bound
	AggregateTimeout time.Duration

	// Routing and confirmation thresholds.
	// These are tuning policy, not correctness invariants.
	AutoAcceptThreshold    float64
	ComplexQueryThreshold  float64
	ConfidenceGapThreshold float64

	// Memory retention caps
	MaxSessionMessages int
	MaxActiveTopics    int
	MaxRecentQueries   int
	SessionMaxAge      time.Duration

	// Confirmation lifecycle
	ConfirmationTTL   time.Duration
	ConfirmationGrace time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:               getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:            getEnv("DATABASE_URL", "file:paddock.db?cache=shared&mode=rwc"),
		KnowledgeAPIURL:        getEnv("KNOWLEDGE_API_URL", "http://localhost:8090"),
		KnowledgeCacheTTL:      time.Duration(getEnvInt("KNOWLEDGE_CACHE_TTL_MS", 300000)) * time.Millisecond,
		ResponderURL:           getEnv("RESPONDER_URL", "http://localhost:4000"),
		ResponderAPIKey:        getEnv("RESPONDER_API_KEY", ""),
		ResponderModel:         getEnv("RESPONDER_MODEL", "gpt-4o-mini"),
		ResponderTimeout:       time.Duration(getEnvInt("RESPONDER_TIMEOUT_MS", 30000)) * time.Millisecond,
		AggregateTimeout:       time.Duration(getEnvInt("AGGREGATE_TIMEOUT_MS", 45000)) * time.Millisecond,
		AutoAcceptThreshold:    getEnvFloat("AUTO_ACCEPT_THRESHOLD", 0.95),
		ComplexQueryThreshold:  getEnvFloat("COMPLEX_QUERY_THRESHOLD", 0.7),
		ConfidenceGapThreshold: getEnvFloat("CONFIDENCE_GAP_THRESHOLD", 0.2),
		MaxSessionMessages:     getEnvInt("MAX_SESSION_MESSAGES", 50),
		MaxActiveTopics:        getEnvInt("MAX_ACTIVE_TOPICS", 10),
		MaxRecentQueries:       getEnvInt("MAX_RECENT_QUERIES", 10),
		SessionMaxAge:          time.Duration(getEnvInt("SESSION_MAX_AGE_MS", 86400000)) * time.Millisecond,
		ConfirmationTTL:        time.Duration(getEnvInt("CONFIRMATION_TTL_MS", 300000)) * time.Millisecond,
		ConfirmationGrace:      time.Duration(getEnvInt("CONFIRMATION_GRACE_MS", 60000)) * time.Millisecond,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}
	return cfg
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

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
