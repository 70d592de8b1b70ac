package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv string
	Port   string

	RedisURL    string
	DatabaseURL string // optional; enables the durable Postgres ledger

	PaystackSecretKey  string
	PaystackBaseURL    string
	PaymentCallbackURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string
	OwnerEmail   string

	CORSAllowedOrigins []string

	NotifyEmailEnabled bool
	NotifyQueueEnabled bool
	QueueConcurrency   int

	IdempotencyTTL     time.Duration
	WebhookPendingTTL  time.Duration
	WebhookRetention   time.Duration
	OutboundTimeout    time.Duration
	RetryMaxAttempts   int
	RetryBase          time.Duration
	RetryJitterPercent float64

	RateLimitWindow time.Duration
	RateLimitMax    int

	MaxBodyBytes int64
}

// Load reads configuration from environment variables and optional .env files.
// Required fields are validated here so the process fails fast instead of
// discovering a missing secret on the first webhook.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		PaystackSecretKey:  k.String("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:    valueOrDefault(k.String("PAYSTACK_BASE_URL"), "https://api.paystack.co"),
		PaymentCallbackURL: k.String("PAYMENT_CALLBACK_URL"),
		SMTPHost:           k.String("SMTP_HOST"),
		SMTPPort:           valueOrDefault(k.String("SMTP_PORT"), "465"),
		SMTPUsername:       k.String("SMTP_USERNAME"),
		SMTPPassword:       k.String("SMTP_PASSWORD"),
		SMTPSender:         k.String("SMTP_SENDER"),
		OwnerEmail:         strings.TrimSpace(k.String("OWNER_EMAIL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		NotifyEmailEnabled: parseBool(valueOrDefault(k.String("NOTIFY_EMAIL_ENABLED"), "true")),
		NotifyQueueEnabled: parseBool(valueOrDefault(k.String("NOTIFY_QUEUE_ENABLED"), "true")),
		QueueConcurrency:   intOrDefault(k.Int("QUEUE_CONCURRENCY"), 4),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		WebhookPendingTTL:  parseDuration(k.String("WEBHOOK_PENDING_TTL"), "15m"),
		WebhookRetention:   parseDuration(k.String("WEBHOOK_RETENTION"), "720h"),
		OutboundTimeout:    parseDuration(k.String("OUTBOUND_TIMEOUT"), "10s"),
		RetryMaxAttempts:   intOrDefault(k.Int("RETRY_MAX_ATTEMPTS"), 3),
		RetryBase:          parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryJitterPercent: floatOrDefault(k.Float64("RETRY_JITTER_PERCENT"), 0.2),
		RateLimitWindow:    parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:       intOrDefault(k.Int("RATE_LIMIT_MAX"), 30),
		MaxBodyBytes:       int64(intOrDefault(k.Int("MAX_BODY_BYTES"), 1<<20)),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.PaystackSecretKey == "" {
		return nil, errors.New("PAYSTACK_SECRET_KEY is required")
	}
	if cfg.OwnerEmail == "" {
		return nil, errors.New("OWNER_EMAIL is required")
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

func intOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func floatOrDefault(value, fallback float64) float64 {
	if value > 0 {
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

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// LoadForTests overrides environment variables for the duration of a Load call.
func LoadForTests(envVars map[string]string) (*Config, error) {
	original := make(map[string]string, len(envVars))
	for key := range envVars {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, envVars[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
