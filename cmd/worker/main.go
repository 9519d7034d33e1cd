package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tallydesk/tallydesk/internal/app"
	"github.com/tallydesk/tallydesk/internal/audit"
	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/observability"
	"github.com/tallydesk/tallydesk/internal/platform/cache"
	"github.com/tallydesk/tallydesk/internal/platform/db"
	"github.com/tallydesk/tallydesk/internal/reports"
	"github.com/tallydesk/tallydesk/internal/shared"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/tallysync"
	"github.com/tallydesk/tallydesk/internal/vouchers"
	"github.com/tallydesk/tallydesk/jobs"
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

	gateway := tally.NewClient(tally.Config{
		BaseURL: cfg.TallyURL,
		Company: cfg.TallyCompany,
		Timeout: cfg.TallyTimeout,
		Logger:  logger,
		Metrics: metrics,
	})

	ledgerRepo := ledgers.NewRepository(pool)
	voucherRepo := vouchers.NewRepository(pool)
	syncRepo := tallysync.NewRepository(pool)

	rate, err := cfg.DefaultGSTRateDecimal()
	if err != nil {
		logger.Error("parse default gst rate", slog.Any("error", err))
		os.Exit(1)
	}
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(logger, voucherRepo, ledgerRepo, reportCache, reports.Config{
		CompanyGSTIN: cfg.CompanyGSTIN,
		DefaultRate:  rate,
	})

	syncService := tallysync.NewService(logger, gateway, ledgerRepo, voucherRepo, syncRepo, reportService, metrics, tallysync.Config{
		LookbackDays: cfg.SyncLookbackDays,
		Locker:       shared.NewLock(redisClient),
	})
	auditService := audit.NewService(logger, audit.NewRepository(pool), ledgerRepo)

	idempotency := shared.NewIdempotencyStore(pool)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := idempotency.Cleanup(ctx, 24*time.Hour); err != nil {
					logger.Warn("idempotency cleanup", slog.Any("error", err))
				}
			}
		}
	}()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTallySync, Handler: jobs.HandleTallySync(syncService)},
			{Type: jobs.TaskComplianceScan, Handler: jobs.HandleComplianceScan(auditService)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SyncCron, Task: jobs.NewTallySyncTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: jobs.NewComplianceScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started",
		slog.String("sync_cron", cfg.SyncCron),
		slog.Int("lookback_days", cfg.SyncLookbackDays))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
