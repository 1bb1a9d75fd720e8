package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vendamais/orderhub/internal/config"
	kafkax "github.com/vendamais/orderhub/internal/kafka"
	"github.com/vendamais/orderhub/internal/notify"
	"github.com/vendamais/orderhub/internal/orders"
	"github.com/vendamais/orderhub/internal/postgres"
	"github.com/vendamais/orderhub/internal/redisx"
	"github.com/vendamais/orderhub/internal/tenant"
	"github.com/vendamais/orderhub/migrations"
)

func atoiOr(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName+"-notifier").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB, only for webhook subscription lookups
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if err := migrations.Run(ctx, db, 5); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &notify.Service{
		Subs:     &tenant.Repo{DB: db},
		Realtime: &notify.RedisRealtime{RDB: rdb},
		Webhooks: notify.NewWebhookClient(cfg.WebhookTimeout),
		Dedup:    &notify.RedisDedup{RDB: rdb, Service: "notifier"},
		Log:      logger,
	}

	// Consumer
	group := getenv("NOTIFIER_GROUP", "orderhub-notifier")
	workers := atoiOr(os.Getenv("NOTIFIER_WORKERS"), 8)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicStockAlerts, workers, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info().Str("group", group).Str("topic", orders.TopicStockAlerts).Int("workers", workers).Msg("notifier consumer started")
		if err := cons.Start(ctx, svc.HandleStockAlert); err != nil {
			logger.Error().Err(err).Msg("consumer exit")
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info().Msg("shutting down consumer...")
	case <-done:
		logger.Error().Msg("consumer stopped unexpectedly")
	}
	cancel()
	<-done
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
