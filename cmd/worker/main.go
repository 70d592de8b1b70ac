package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/config"
	"github.com/chezvous/backend-booking/internal/notify"
	"github.com/chezvous/backend-booking/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "booking")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
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
	} else {
		logger.Warn().Msg("smtp not configured; emails will be dropped")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Username: redisOpts.Username,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: cfg.QueueConcurrency,
		},
	)

	worker := notify.EmailWorker{Mail: mail, Logger: logger}
	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TypeEmailSend, worker.HandleEmailSend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
