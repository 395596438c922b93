package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/migrate"
	cartrepo "storefront/internal/repository/cart"
	checkoutrepo "storefront/internal/repository/checkout"
	courserepo "storefront/internal/repository/course"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	usersvc "storefront/internal/service/user"

	"go.uber.org/zap"
)

const tokenPurgeInterval = time.Hour

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
	logger = logger.With(zap.String("service", "api"))

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	m := metrics.New(nil, "api")

	courseRepo := courserepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	checkoutRepo := checkoutrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(courseRepo, productRepo, cfg.PageSize)
	cartService := cartsvc.New(cartRepo, courseRepo, productRepo, logger)
	checkoutService := checkoutsvc.New(checkoutRepo, cfg.Kafka.OrdersTopic, logger, checkoutsvc.WithMetrics(m))
	orderService := ordersvc.New(orderRepo, ordersvc.BankDetails{
		AccountNumber: cfg.Bank.AccountNumber,
		Name:          cfg.Bank.Name,
		Instructions:  cfg.Bank.Instructions,
	}, logger)
	userService := usersvc.New(userRepo, tokenRepo, orderRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:        catalogService,
		Users:          userService,
		Carts:          cartService,
		Checkout:       checkoutService,
		Orders:         orderService,
		Metrics:        m,
		MetricsHandler: metrics.Handler(),
		AdminToken:     cfg.AdminToken,
		CORSOrigins:    cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go purgeTokens(purgeCtx, userService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}
	stopPurge()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func purgeTokens(ctx context.Context, users *usersvc.Service, logger *zap.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := users.PurgeExpiredTokens(ctx)
			if err != nil {
				logger.Warn("purge expired tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged expired tokens", zap.Int64("count", n))
			}
		}
	}
}
