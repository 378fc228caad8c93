package main

import (
	"context"
	"log/slog"
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
	"github.com/milletflow/milletflow/internal/orders"
	"github.com/milletflow/milletflow/internal/platform/cache"
	"github.com/milletflow/milletflow/internal/platform/db"
	"github.com/milletflow/milletflow/internal/sales"
	"github.com/milletflow/milletflow/internal/summary"
	"github.com/milletflow/milletflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	activityRepo := activity.NewRepository(pool)
	activityService := activity.NewService(activityRepo, logger)

	productRepo := products.NewRepository(pool)
	warehouseRepo := warehouses.NewRepository(pool)
	distributorRepo := distributors.NewRepository(pool)
	orderRepo := orders.NewRepository(pool)
	salesRepo := sales.NewRepository(pool)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, productRepo, warehouseRepo, activityService)

	summaryCache := summary.NewCache(redisClient, cfg.SummaryCacheTTL)
	summaryService := summary.NewService(summary.Counters{
		Products:     productRepo,
		Warehouses:   warehouseRepo,
		Distributors: distributorRepo,
		Orders:       orderRepo,
		Sales:        salesRepo,
		Activities:   activityRepo,
	}, summaryCache)

	lowStockJob := jobs.NewLowStockScanJob(ledgerService, activityService, logger, cfg.LowStockThreshold)
	warmupJob := jobs.NewSummaryWarmupJob(summaryService, logger)

	lowStockTask, err := jobs.NewLowStockScanTask(cfg.LowStockThreshold)
	if err != nil {
		logger.Error("build low stock task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewSummaryWarmupTask(time.Now().UTC())
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockScan, Handler: lowStockJob.Handle},
			{Type: jobs.TaskSummaryWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: lowStockTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
