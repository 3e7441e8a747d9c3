package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/salespoint/pos-backend/internal/cart"
	"github.com/salespoint/pos-backend/internal/checkout"
	"github.com/salespoint/pos-backend/internal/common"
	"github.com/salespoint/pos-backend/internal/config"
	"github.com/salespoint/pos-backend/internal/directory"
	"github.com/salespoint/pos-backend/internal/events"
	"github.com/salespoint/pos-backend/internal/health"
	"github.com/salespoint/pos-backend/internal/obs"
	"github.com/salespoint/pos-backend/internal/ratelimit"
	"github.com/salespoint/pos-backend/internal/resilience"
	"github.com/salespoint/pos-backend/internal/security"
	"github.com/salespoint/pos-backend/internal/stream"
	"github.com/salespoint/pos-backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "pos")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)
	resilience.MustRegisterMetrics()

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pos-api",
			Endpoint:      cfg.TracingEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if err := runMigrations(cfg); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pos-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse task queue url")
	}
	taskClient := asynq.NewClient(taskConn)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	bus := &events.Bus{
		Store:     &events.PGStore{Pool: pool},
		Scheduler: &tasks.Scheduler{Client: taskClient, Queue: cfg.TaskQueue},
	}

	hub := stream.NewHub()
	go hub.Run()

	cartSvc := &cart.Service{
		Store:     cart.NewRedisStore(redisClient, cfg.CartSessionTTL),
		Publisher: hub,
	}
	cartHandler := &cart.Handler{Svc: cartSvc, Validate: validator.New()}

	processorBreaker := resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).
		WithTarget("order-processor").
		WithLogger(logger)
	checkoutSvc := &checkout.Service{
		Carts: cartSvc,
		Gates: checkout.NewGates(),
		Processor: &checkout.HTTPProcessor{
			Client: resilience.HTTPClient{
				Client:      &http.Client{},
				Breaker:     processorBreaker,
				BaseBackoff: cfg.RetryBase,
				MaxAttempts: cfg.RetryMaxAttempts,
				Jitter:      cfg.RetryJitterPercent,
				Timeout:     cfg.OutboundTimeout,
			},
			BaseURL: cfg.OrderProcessorURL,
		},
		Events: bus,
		Log:    logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	dirSvc := &directory.Service{
		Store:          &directory.PGStore{Pool: pool},
		Cache:          directory.NewCache(redisClient, cfg.DirectoryCacheTTL),
		Log:            logger,
		DefaultPerPage: cfg.DirectoryDefaultLimit,
		MaxPerPage:     cfg.DirectoryMaxLimit,
	}
	dirHandler := &directory.Handler{Svc: dirSvc}

	streamHandler := &stream.Handler{Hub: hub, Carts: cartSvc, Log: logger}

	lookupLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:lookup"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP,
			Window: cfg.LookupRateWindow,
			Max:    cfg.LookupRateMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, nil, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.BodyLimit{Max: 1 << 20}.Middleware)
	r.Use(security.Headers{
		Enable:                envBool("SECURE_HEADERS_ENABLE", true),
		EnableHSTS:            envBool("SECURE_HSTS_ENABLE", false),
		HSTSIncludeSubdomains: true,
	}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker: health.Probes{Pool: pool, Redis: redisClient},
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Group(func(lookup chi.Router) {
			lookup.Use(lookupLimit.Middleware)
			lookup.Get("/products", dirHandler.ListProducts)
			lookup.Get("/products/{id}", dirHandler.GetProduct)
			lookup.Get("/customers", dirHandler.ListCustomers)
			lookup.Get("/sales-agents", dirHandler.ListAgents)
			lookup.Get("/payment-types", dirHandler.ListPaymentTypes)
		})

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", cartHandler.Get)
			c.Get("/{id}/stream", streamHandler.Serve)

			c.Post("/", cartHandler.Create)
			c.Post("/{id}/items", cartHandler.AddItem)
			c.Patch("/{id}/items/{line}", cartHandler.UpdateItem)
			c.Put("/{id}/items/{line}/discount", cartHandler.UpdateDiscount)
			c.Post("/{id}/items/{line}/vat", cartHandler.SetVAT)
			c.Delete("/{id}/items/{line}", cartHandler.RemoveItem)
			c.Delete("/{id}/items", cartHandler.Clear)
			c.Put("/{id}/customer", cartHandler.SetCustomer)
			c.Put("/{id}/agent", cartHandler.SetAgent)

			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/{id}/submit", checkoutHandler.Submit)
				g.Post("/{id}/tender", checkoutHandler.ConfirmTender)
			})
			c.Delete("/{id}/tender", checkoutHandler.CancelTender)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	health.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func runMigrations(cfg *config.Config) error {
	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
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

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}
