package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vendamais/orderhub/internal/config"
	"github.com/vendamais/orderhub/internal/httpx"
	kafkax "github.com/vendamais/orderhub/internal/kafka"
	"github.com/vendamais/orderhub/internal/orders"
	"github.com/vendamais/orderhub/internal/postgres"
	"github.com/vendamais/orderhub/internal/redisx"
	"github.com/vendamais/orderhub/internal/tenant"
	"github.com/vendamais/orderhub/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
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

	// Kafka producers, one per topic
	orderProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, logger)
	orderProd.Start(ctx)
	stockProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockAlerts, 1024, logger)
	stockProd.Start(ctx)

	// Repos & handlers
	orderRepo := &orders.Repo{DB: db}
	tenantRepo := &tenant.Repo{DB: db}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Store:       orderRepo,
		OrderEvents: orderProd,
		StockEvents: stockProd,
		Cache:       rdb,
		Service:     cfg.ServiceName,
		Log:         logger,
	}
	oh.Register(router)
	th := &httpx.TenantHandler{Repo: tenantRepo, Log: logger}
	th.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	orderProd.Close() // close inbox -> flush & close writer
	stockProd.Close()
	cancel() // stop producer loops
	orderProd.WaitClosed()
	stockProd.WaitClosed()
}
