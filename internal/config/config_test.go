package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"REDIS_URL":           "redis://localhost:6379/0",
		"PAYSTACK_SECRET_KEY": "sk_test_abc",
		"OWNER_EMAIL":         "owner@example.com",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "https://api.paystack.co", cfg.PaystackBaseURL)
	require.Equal(t, 15*time.Minute, cfg.WebhookPendingTTL)
	require.Equal(t, 720*time.Hour, cfg.WebhookRetention)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, 3, cfg.RetryMaxAttempts)
	require.True(t, cfg.NotifyEmailEnabled)
	require.True(t, cfg.NotifyQueueEnabled)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoadRequiredFields(t *testing.T) {
	for _, missing := range []string{"REDIS_URL", "PAYSTACK_SECRET_KEY", "OWNER_EMAIL"} {
		env := baseEnv()
		env[missing] = ""
		_, err := LoadForTests(env)
		require.Error(t, err, missing)
		require.Contains(t, err.Error(), missing)
	}
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["APP_ENV"] = "production"
	env["WEBHOOK_PENDING_TTL"] = "5m"
	env["NOTIFY_QUEUE_ENABLED"] = "false"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example.com, https://b.example.com"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, 5*time.Minute, cfg.WebhookPendingTTL)
	require.False(t, cfg.NotifyQueueEnabled)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	env := baseEnv()
	env["WEBHOOK_PENDING_TTL"] = "not-a-duration"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.WebhookPendingTTL)
}
