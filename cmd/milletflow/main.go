package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/milletflow/milletflow/internal/activity"
	"github.com/milletflow/milletflow/internal/app"
	"github.com/milletflow/milletflow/internal/ledger"
	"github.com/milletflow/milletflow/internal/masterdata/distributors"
	"github.com/milletflow/milletflow/internal/masterdata/products"
	"github.com/milletflow/milletflow/internal/masterdata/warehouses"
	"github.com/milletflow/milletflow/internal/observability"
	"github.com/milletflow/milletflow/internal/orders"
	"github.com/milletflow/milletflow/internal/platform/cache"
	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/sales"
	"github.com/milletflow/milletflow/internal/summary"
	"github.com/milletflow/milletflow/jobs"
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
		logger.Warn("redis unavailable, summary cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	activityRepo := activity.NewRepository(pool)
	activityService := activity.NewService(activityRepo, logger)
	activityHandler := activity.NewHandler(logger, activityService)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService)

	warehouseRepo := warehouses.NewRepository(pool)
	warehouseService := warehouses.NewService(warehouseRepo)
	warehouseHandler := warehouses.NewHandler(logger, warehouseService)

	distributorRepo := distributors.NewRepository(pool)
	distributorService := distributors.NewService(distributorRepo)
	distributorHandler := distributors.NewHandler(logger, distributorService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, productRepo, warehouseRepo, activityService)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, activityService, logger)
	orderHandler := orders.NewHandler(logger, orderService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, productRepo, distributorRepo, warehouseRepo, activityService, logger)
	salesHandler := sales.NewHandler(logger, salesService)

	summaryCache := summary.NewCache(redisClient, cfg.SummaryCacheTTL)
	summaryService := summary.NewService(summary.Counters{
		Products:     productRepo,
		Warehouses:   warehouseRepo,
		Distributors: distributorRepo,
		Orders:       orderRepo,
		Sales:        salesRepo,
		Activities:   activityRepo,
	}, summaryCache)
	summaryHandler := summary.NewHandler(logger, summaryService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ProductHandler:     productHandler,
		WarehouseHandler:   warehouseHandler,
		DistributorHandler: distributorHandler,
		LedgerHandler:      ledgerHandler,
		OrderHandler:       orderHandler,
		SalesHandler:       salesHandler,
		ActivityHandler:    activityHandler,
		SummaryHandler:     summaryHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
