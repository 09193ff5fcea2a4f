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

	"github.com/gemlot/gemlot/internal/app"
	"github.com/gemlot/gemlot/internal/catalog"
	"github.com/gemlot/gemlot/internal/consignment"
	"github.com/gemlot/gemlot/internal/expenses"
	"github.com/gemlot/gemlot/internal/observability"
	"github.com/gemlot/gemlot/internal/platform/cache"
	"github.com/gemlot/gemlot/internal/platform/db"
	"github.com/gemlot/gemlot/internal/pos"
	"github.com/gemlot/gemlot/internal/reports"
	"github.com/gemlot/gemlot/internal/shared"
	"github.com/gemlot/gemlot/internal/suppliers"
	"github.com/gemlot/gemlot/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)
	ownerApprover := shared.NewOwnerApprover(cfg.OwnerPINHash)

	supplierRepo := suppliers.NewRepository(dbpool)
	supplierService := suppliers.NewService(supplierRepo)
	supplierHandler := suppliers.NewHandler(logger, supplierService)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo, queryCache, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	expenseRepo := expenses.NewRepository(dbpool)
	expenseService := expenses.NewService(expenseRepo, auditLogger, queryCache, logger)
	expenseHandler := expenses.NewHandler(logger, expenseService)

	posRepo := pos.NewRepository(dbpool)
	posService := pos.NewService(posRepo, ownerApprover, approvalRecorder, auditLogger, queryCache, logger)
	posHandler := pos.NewHandler(logger, posService)

	consignmentRepo := consignment.NewRepository(dbpool)
	consignmentService := consignment.NewService(consignmentRepo, auditLogger, queryCache, logger)
	consignmentHandler := consignment.NewHandler(logger, consignmentService)

	reportRepo := reports.NewRepository(dbpool)
	reportService := reports.NewService(reportRepo, queryCache, logger)
	reportHandler := reports.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SupplierHandler:    supplierHandler,
		CatalogHandler:     catalogHandler,
		ExpenseHandler:     expenseHandler,
		POSHandler:         posHandler,
		ConsignmentHandler: consignmentHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
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
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("server stopped")
}
