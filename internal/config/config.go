package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	CartSessionTTL time.Duration
	IdempotencyTTL time.Duration

	OrderProcessorURL string
	ReceiptEndpoint   string
	SaleSyncEndpoint  string

	OutboundTimeout     time.Duration
	RetryBase           time.Duration
	RetryMaxAttempts    int
	RetryJitterPercent  float64
	CircuitMinRequests  int
	CircuitFailureRate  float64
	CircuitOpenFor      time.Duration

	DirectoryCacheTTL     time.Duration
	DirectoryDefaultLimit int
	DirectoryMaxLimit     int
	LookupRateWindow      time.Duration
	LookupRateMax         int

	TaskQueue       string
	TaskConcurrency int

	MigrationsPath string

	TracingEnabled  bool
	TracingEndpoint string
	TracingExporter string
	TracingSampling float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CartSessionTTL: parseDuration(k.String("CART_SESSION_TTL"), "12h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		OrderProcessorURL: strings.TrimSpace(k.String("ORDER_PROCESSOR_URL")),
		ReceiptEndpoint:   strings.TrimSpace(k.String("RECEIPT_ENDPOINT")),
		SaleSyncEndpoint:  strings.TrimSpace(k.String("SALE_SYNC_ENDPOINT")),

		OutboundTimeout:    parseDuration(k.String("OUTBOUND_TIMEOUT"), "5s"),
		RetryBase:          parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:   parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent: parseFloat(k.String("RETRY_JITTER_PERCENT"), 0.2),
		CircuitMinRequests: parseInt(k.String("CIRCUIT_MIN_REQUESTS"), 5),
		CircuitFailureRate: parseFloat(k.String("CIRCUIT_FAILURE_RATE"), 0.5),
		CircuitOpenFor:     parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),

		DirectoryCacheTTL:     parseDuration(k.String("DIRECTORY_CACHE_TTL"), "5m"),
		DirectoryDefaultLimit: parseInt(k.String("DIRECTORY_DEFAULT_LIMIT"), 20),
		DirectoryMaxLimit:     parseInt(k.String("DIRECTORY_MAX_LIMIT"), 100),
		LookupRateWindow:      parseDuration(k.String("LOOKUP_RATE_WINDOW"), "1s"),
		LookupRateMax:         parseInt(k.String("LOOKUP_RATE_MAX"), 25),

		TaskQueue:       valueOrDefault(k.String("TASK_QUEUE"), "sales"),
		TaskConcurrency: parseInt(k.String("TASK_CONCURRENCY"), 10),

		MigrationsPath: valueOrDefault(k.String("MIGRATIONS_PATH"), "file://migrations"),

		TracingEnabled:  parseBool(k.String("TRACING_ENABLED")),
		TracingEndpoint: strings.TrimSpace(k.String("TRACING_ENDPOINT")),
		TracingExporter: valueOrDefault(k.String("TRACING_EXPORTER"), "otlp"),
		TracingSampling: parseFloat(k.String("TRACING_SAMPLING"), 1),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
