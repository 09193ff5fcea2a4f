package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gemlot/gemlot/internal/app"
	"github.com/gemlot/gemlot/internal/expenses"
	"github.com/gemlot/gemlot/internal/observability"
	"github.com/gemlot/gemlot/internal/platform/cache"
	"github.com/gemlot/gemlot/internal/platform/db"
	"github.com/gemlot/gemlot/internal/reports"
	"github.com/gemlot/gemlot/internal/shared"
	"github.com/gemlot/gemlot/jobs"
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

	metrics := observability.NewMetrics()
	queryCache := cache.NewQueryCache(redisClient, cfg.ReportCacheTTL)
	auditLogger := shared.NewAuditLogger(pool)

	expenseRepo := expenses.NewRepository(pool)
	expenseService := expenses.NewService(expenseRepo, auditLogger, queryCache, logger)

	reportRepo := reports.NewRepository(pool)
	reportService := reports.NewService(reportRepo, queryCache, logger)

	mailer, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailer.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	dueScanJob := jobs.NewDueScanJob(expenseService, mailer, logger, metrics, cfg.ReminderRecipient)
	warmupJob := jobs.NewReportWarmupJob(reportService, logger, metrics)

	dueScanTask, err := jobs.NewDueScanTask(time.Time{})
	if err != nil {
		logger.Error("build due scan task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewReportWarmupTask(time.Time{}, time.Time{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeDueScan, Handler: dueScanJob.Handle},
			{Type: jobs.TaskTypeReportWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 7 * * *", Task: dueScanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
