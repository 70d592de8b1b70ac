package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/chezvous/backend-booking/internal/booking"
	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/config"
	"github.com/chezvous/backend-booking/internal/gateway"
	"github.com/chezvous/backend-booking/internal/health"
	"github.com/chezvous/backend-booking/internal/ledger"
	"github.com/chezvous/backend-booking/internal/notify"
	"github.com/chezvous/backend-booking/internal/obs"
	"github.com/chezvous/backend-booking/internal/ratelimit"
	"github.com/chezvous/backend-booking/internal/resilience"
	"github.com/chezvous/backend-booking/internal/security"
	"github.com/chezvous/backend-booking/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "booking")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", false)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "booking-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
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

	var pool *pgxpool.Pool
	var eventLedger ledger.Ledger
	if cfg.DatabaseURL != "" {
		if err := ledger.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply ledger migrations")
		}
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("ping database")
		}
		eventLedger = ledger.Postgres{Pool: pool, PendingTTL: cfg.WebhookPendingTTL}
	} else {
		eventLedger = ledger.Redis{
			Client:     redisClient,
			PendingTTL: cfg.WebhookPendingTTL,
			Retention:  cfg.WebhookRetention,
		}
	}

	var mail common.EmailSender = common.NopEmailSender{}
	if cfg.NotifyEmailEnabled && cfg.SMTPHost != "" {
		mail = notify.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
			Timeout:  cfg.OutboundTimeout,
		}
	}

	mailer := notify.Mailer{
		OwnerEmail: cfg.OwnerEmail,
		SiteName:   envOrDefault("SITE_NAME", ""),
	}
	var dispatcher notify.Dispatcher
	var taskClient *asynq.Client
	if cfg.NotifyQueueEnabled {
		taskClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Username: redisOpts.Username,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		})
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close task client")
			}
		}()
		dispatcher = notify.Enqueuer{Client: taskClient, Mailer: mailer}
	} else {
		dispatcher = notify.Direct{Mail: mail, Mailer: mailer, Logger: logger}
	}

	paystack := gateway.Paystack{
		SecretKey: cfg.PaystackSecretKey,
		BaseURL:   cfg.PaystackBaseURL,
		HTTP: &resilience.HTTPClient{
			Client:      &http.Client{},
			Breaker:     resilience.NewBreaker(10, 0.5, 30*time.Second),
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
			Timeout:     cfg.OutboundTimeout,
		},
	}

	bookingHandler := &booking.Handler{
		Gateway:     paystack,
		Notify:      dispatcher,
		Validate:    validator.New(),
		CallbackURL: cfg.PaymentCallbackURL,
		Logger:      logger,
	}
	webhookHandler := webhook.Handler{
		Verifier: paystack,
		Ledger:   eventLedger,
		Notify:   dispatcher,
		Logger:   logger,
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	limiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:init:"},
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return strings.Split(r.RemoteAddr, ":")[0] },
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limiter store error") },
	}
	bodyLimit := security.BodyLimit{Max: cfg.MaxBodyBytes}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, nil, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		MaxAge:         300,
	}))
	r.Use(bodyLimit.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{redis: redisClient, db: pool},
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		DBEnabled:    pool != nil,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(limiter.Middleware, idem.Middleware).Post("/payments/initialize", bookingHandler.Initialize)
		v.Post("/webhooks/paystack", webhookHandler.Handle)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

type readinessChecker struct {
	redis *redis.Client
	db    *pgxpool.Pool
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDurationMillis(key string, fallback int) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Duration(fallback) * time.Millisecond
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(parsed) * time.Millisecond
}
