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
	"github.com/redis/go-redis/v9"

	"github.com/tallydesk/tallydesk/internal/app"
	"github.com/tallydesk/tallydesk/internal/audit"
	"github.com/tallydesk/tallydesk/internal/gst"
	"github.com/tallydesk/tallydesk/internal/ledgers"
	"github.com/tallydesk/tallydesk/internal/observability"
	"github.com/tallydesk/tallydesk/internal/platform/db"
	"github.com/tallydesk/tallydesk/internal/reports"
	"github.com/tallydesk/tallydesk/internal/search"
	"github.com/tallydesk/tallydesk/internal/shared"
	"github.com/tallydesk/tallydesk/internal/tally"
	"github.com/tallydesk/tallydesk/internal/tallysync"
	"github.com/tallydesk/tallydesk/internal/vouchers"
	"github.com/tallydesk/tallydesk/jobs"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
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

	ledgerRepo := ledgers.NewRepository(dbpool)
	ledgerService := ledgers.NewService(ledgerRepo)
	ledgerHandler := ledgers.NewHandler(logger, ledgerService)

	voucherRepo := vouchers.NewRepository(dbpool)
	idempotency := shared.NewIdempotencyStore(dbpool)
	voucherService := vouchers.NewService(logger, voucherRepo, gateway, idempotency)
	voucherHandler := vouchers.NewHandler(logger, voucherService)

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
	reportHandler := reports.NewHandler(logger, reportService)

	searchService := search.NewService(ledgerRepo, voucherRepo)
	searchHandler := search.NewHandler(logger, searchService)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(logger, auditRepo, ledgerRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	syncRepo := tallysync.NewRepository(dbpool)
	syncService := tallysync.NewService(logger, gateway, ledgerRepo, voucherRepo, syncRepo, reportService, metrics, tallysync.Config{
		LookbackDays: cfg.SyncLookbackDays,
	})

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	syncHandler := tallysync.NewHandler(logger, syncService, jobClient)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Pool:           dbpool,
		Metrics:        metrics,
		GSTHandler:     gst.NewHandler(logger),
		LedgerHandler:  ledgerHandler,
		VoucherHandler: voucherHandler,
		ReportHandler:  reportHandler,
		SearchHandler:  searchHandler,
		AuditHandler:   auditHandler,
		SyncHandler:    syncHandler,
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
