package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	billingapp "github.com/wms/backend/internal/application/billing"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/application/notify"
	orderapp "github.com/wms/backend/internal/application/order"
	"github.com/wms/backend/internal/domain/approval"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/scheduler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	zapLogger, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer zapLogger.Sync() //nolint:errcheck

	zapLogger.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLogLevel := gormlogger.Warn
	if cfg.App.Env == "development" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(zapLogger.Named("gorm"), gormLogLevel))
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRecordRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	billingTxScope := persistence.NewGormBillingTransactionScope(db.DB)

	// Approval policy store, seeded from config on first run
	configStore := persistence.NewGormWorkflowConfigStore(db.DB, approval.Config{
		RequireApproval:      cfg.Approval.RequireApproval,
		AutoApproveThreshold: cfg.Approval.AutoApproveThresholdDecimal(),
	})
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := configStore.Seed(seedCtx); err != nil {
		zapLogger.Warn("failed to seed approval configuration", zap.Error(err))
	}
	seedCancel()

	// Event bus and idempotency store
	eventBus := event.NewInMemoryEventBus(zapLogger.Named("eventbus"))
	idempotencyStore, err := cache.NewIdempotencyStore(
		cache.StoreBackend(cfg.Event.IdempotencyBackend),
		cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		zapLogger.Named("cache"),
	)
	if err != nil {
		zapLogger.Fatal("failed to create idempotency store", zap.Error(err))
	}

	// Application services
	orderService := orderapp.NewService(orderRepo, approvalRepo, configStore, txScope, zapLogger.Named("order"))
	orderService.SetEventPublisher(eventBus)

	invoiceService := billingapp.NewService(invoiceRepo, orderRepo, billingTxScope,
		cfg.Billing.VATRateDecimal(), zapLogger.Named("billing"))
	invoiceService.SetEventPublisher(eventBus)

	// Invoice generation runs synchronously as part of the completed
	// transition; the event subscription below only redelivers.
	orderService.SetInvoiceGenerator(orderapp.InvoiceGeneratorFunc(
		func(ctx context.Context, orderID uuid.UUID) error {
			_, err := invoiceService.GenerateForOrder(ctx, orderID)
			return err
		}))

	inventoryService := inventoryapp.NewService(inventoryRepo, movementRepo, zapLogger.Named("inventory"))

	// Event subscriptions: invoice redelivery on completion events, then
	// fire-and-forget notifications
	idempotencyCfg := shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: cfg.Event.IdempotencyEnabled,
	}
	eventBus.Subscribe(billingapp.NewOrderCompletedHandler(
		invoiceService, idempotencyStore, idempotencyCfg, zapLogger.Named("billing")))

	notifier := notify.NewLoggingNotifier(zapLogger.Named("notify"))
	eventBus.Subscribe(notify.NewOrderNotificationHandler(notifier, zapLogger.Named("notify")))
	eventBus.Subscribe(notify.NewInvoiceNotificationHandler(notifier, zapLogger.Named("notify")))

	ctx := context.Background()
	if err := eventBus.Start(ctx); err != nil {
		zapLogger.Fatal("failed to start event bus", zap.Error(err))
	}

	// Overdue invoice sweep
	sweepScheduler := scheduler.NewOverdueSweepScheduler(invoiceService, zapLogger.Named("scheduler"),
		scheduler.OverdueSweepSchedulerConfig{
			Enabled:      cfg.Billing.SweepEnabled,
			Interval:     cfg.Billing.SweepInterval,
			BatchSize:    cfg.Billing.SweepBatchSize,
			SweepTimeout: 5 * time.Minute,
		})
	if err := sweepScheduler.Start(ctx); err != nil {
		zapLogger.Fatal("failed to start overdue sweep scheduler", zap.Error(err))
	}

	// HTTP server
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine := router.New(router.Config{
		DB:               db.DB,
		Logger:           zapLogger.Named("http"),
		OrderService:     orderService,
		InvoiceService:   invoiceService,
		InventoryService: inventoryService,
		CORS:             corsCfg,
		Version:          version,
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			zapLogger.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sweepScheduler.Stop(stopCtx); err != nil {
		zapLogger.Error("overdue sweep scheduler shutdown failed", zap.Error(err))
	}
	stopCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		zapLogger.Error("event bus shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
