package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/salespoint/pos-backend/internal/config"
	"github.com/salespoint/pos-backend/internal/obs"
	"github.com/salespoint/pos-backend/internal/resilience"
	"github.com/salespoint/pos-backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	resilience.MustRegisterMetrics()

	taskConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse task queue url")
	}

	srv := asynq.NewServer(taskConn, asynq.Config{
		Concurrency: cfg.TaskConcurrency,
		Queues:      map[string]int{cfg.TaskQueue: 1},
	})

	handlers := &tasks.Handlers{
		Receipts: outboundDeliverer(cfg, logger, "receipt-dispatch", cfg.ReceiptEndpoint),
		Sync:     outboundDeliverer(cfg, logger, "sale-sync", cfg.SaleSyncEndpoint),
		Log:      logger,
	}

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	logger.Info().Str("queue", cfg.TaskQueue).Int("concurrency", cfg.TaskConcurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func outboundDeliverer(cfg *config.Config, logger zerolog.Logger, target, endpoint string) *tasks.HTTPDeliverer {
	breaker := resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).
		WithTarget(target).
		WithLogger(logger)
	return &tasks.HTTPDeliverer{
		Client: resilience.HTTPClient{
			Client:      &http.Client{},
			Breaker:     breaker,
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
			Timeout:     cfg.OutboundTimeout,
		},
		Endpoint: endpoint,
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
