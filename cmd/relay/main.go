package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/relay"
	"storefront/internal/repository/outbox"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("service", "relay"))

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("no KAFKA_BROKERS configured, relay disabled")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	writer := relay.NewWriter(cfg.Kafka.Brokers)
	defer writer.Close()

	m := metrics.New(nil, "relay")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(cfg.Relay.MetricsAddr, mux); err != nil {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()

	r := relay.New(outbox.NewPostgres(pool), writer, cfg.Relay.BatchSize, cfg.Relay.Interval, logger, m)
	logger.Info("relay started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.Duration("interval", cfg.Relay.Interval))
	if err := r.Run(ctx); err != nil {
		logger.Error("relay stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("relay stopped")
}
