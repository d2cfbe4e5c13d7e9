package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile/dental-api/internal/repository/postgres"
	appointmentService "github.com/brightsmile/dental-api/internal/service/appointment"
	redisBroker "github.com/brightsmile/dental-api/pkg/messaging/redis"
	"github.com/brightsmile/dental-api/pkg/metrics"
	"github.com/brightsmile/dental-api/pkg/worker"
)

type workerConfig struct {
	DatabaseURL        string        `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr          string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword      string        `envconfig:"REDIS_PASSWORD"`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	RetryAttempts      int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay         time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"1s"`
	MetricsPort        int           `envconfig:"METRICS_PORT" default:"9091"`
}

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisBroker.NewBroker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("dental_api", "worker")
	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, m, worker.OutboxProcessorConfig{
		BatchSize:     cfg.OutboxBatchSize,
		PollInterval:  cfg.OutboxPollInterval,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		Topic:         appointmentService.TopicAppointments,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		log.Info().Int("port", cfg.MetricsPort).Msg("metrics server listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown failed")
	}
}
