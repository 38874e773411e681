package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-oms/meridian-oms/internal/app"
	"github.com/meridian-oms/meridian-oms/internal/leadimport"
	importhttp "github.com/meridian-oms/meridian-oms/internal/leadimport/http"
	"github.com/meridian-oms/meridian-oms/internal/masterdata/cities"
	"github.com/meridian-oms/meridian-oms/internal/masterdata/products"
	"github.com/meridian-oms/meridian-oms/internal/platform/cache"
	"github.com/meridian-oms/meridian-oms/internal/platform/db"
	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
	"github.com/meridian-oms/meridian-oms/internal/sales/orders"
	"github.com/meridian-oms/meridian-oms/internal/users"
	"github.com/meridian-oms/meridian-oms/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	runStore := leadimport.NewRunStore(redisClient, cfg.ImportRunTTL)
	importService := leadimport.NewService(leadimport.NewRepository(pool), logger, nil)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, runStore)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("jobs inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ImportHandler:    importhttp.NewHandler(logger, importService, runStore, jobClient, cfg.ImportRatePerMinute),
		ProductsHandler:  products.NewHandler(logger, products.NewService(products.NewRepository(pool))),
		CitiesHandler:    cities.NewHandler(logger, cities.NewService(cities.NewRepository(pool))),
		CustomersHandler: customers.NewHandler(logger, customers.NewService(customers.NewRepository(pool))),
		OrdersHandler:    orders.NewHandler(logger, orders.NewRepository(pool)),
		UsersHandler:     users.NewHandler(logger, users.NewRepository(pool)),
		JobsHandler:      jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
