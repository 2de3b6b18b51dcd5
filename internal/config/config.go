package config

import (
	"os"
	"strconv"
)

type Config struct {
	LogLevel string

	CatalogPath string
	InputDir    string
	OutputPath  string

	ConfidenceThreshold float64
	ClassifierMode      string
	MaxDocumentChars    int
	MaxEvidence         int
	MaxTokens           int
	Concurrency         int
	CallTimeoutSeconds  int

	OllamaURL               string
	OllamaModel             string
	OllamaRequestsPerSecond float64

	CachePath string

	PostgresDSN string

	NATSURL     string
	NATSSubject string

	RetryMaxAttempts      int
	RetryInitialBackoffMS int
	CircuitBreakerEnabled bool

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		CatalogPath: mustEnv("CATALOG_PATH", "config/document_types.yaml"),
		InputDir:    mustEnv("INPUT_DIR", "docs"),
		OutputPath:  mustEnv("OUTPUT_PATH", "outputs/report.json"),

		ConfidenceThreshold: mustEnvFloat("CONFIDENCE_THRESHOLD", 0.7),
		ClassifierMode:      mustEnv("CLASSIFIER_MODE", "semantic"),
		MaxDocumentChars:    mustEnvInt("MAX_DOCUMENT_CHARS", 4000),
		MaxEvidence:         mustEnvInt("MAX_EVIDENCE", 5),
		MaxTokens:           mustEnvInt("MAX_TOKENS", 1024),
		Concurrency:         mustEnvInt("CONCURRENCY", 4),
		CallTimeoutSeconds:  mustEnvInt("CALL_TIMEOUT_SECONDS", 120),

		OllamaURL:               mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:             mustEnv("OLLAMA_MODEL", "mistral"),
		OllamaRequestsPerSecond: mustEnvFloat("OLLAMA_RPS", 2),

		CachePath: mustEnv("CACHE_PATH", "outputs/classification_cache.db"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "scans.requested"),

		RetryMaxAttempts:      mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoffMS: mustEnvInt("RETRY_INITIAL_BACKOFF_MS", 200),
		CircuitBreakerEnabled: mustEnvBool("CIRCUIT_BREAKER_ENABLED", true),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9091"),
	}
}

func mustEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func mustEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func mustEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
