// Package app assembles the gateway from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/DanielPopoola/wallee-gateway/internal/api"
	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/cache"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/queue"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/wallee-gateway/internal/worker"
)

type settingsBus interface {
	application.SettingsNotifier
	Listen(ctx context.Context, onChange func()) error
}

// App holds the wired gateway. Both the server and the admin CLI build one.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *postgres.DB

	Provider     *processor.Provider
	Transactions *postgres.TransactionRepository
	WebhookLogs  *postgres.WebhookLogRepository

	Reconciler       *services.ReconcileService
	Checkout         *services.CheckoutService
	TransactionOps   *services.TransactionService
	TerminalPayments *services.TerminalPaymentService
	Terminals        *services.TerminalService
	PaymentLinks     *services.PaymentLinkService
	Settings         *services.SettingsService
	Webhooks         *services.WebhookService
	Redirect         *services.RedirectService

	bus         settingsBus
	kafkaQueue  *queue.KafkaQueue
	inlineQueue *queue.InlineQueue
	closers     []func() error
}

// New connects to Postgres, applies migrations and seeds the settings record.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, DB: db}
	a.closers = append(a.closers, func() error { db.Close(); return nil })

	if err := db.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	settingsRepo := postgres.NewSettingsRepository(db)
	refundRepo := postgres.NewRefundRepository(db)
	terminalRepo := postgres.NewTerminalRepository(db)
	resourceRepo := postgres.NewResourceRepository(db)
	a.Transactions = postgres.NewTransactionRepository(db)
	a.WebhookLogs = postgres.NewWebhookLogRepository(db)

	a.Provider = processor.NewProvider(settingsRepo, cfg.Processor, logger)
	a.bus = a.newSettingsBus(ctx)

	a.Reconciler = services.NewReconcileService(a.Transactions, db, a.Provider, logger)
	a.Checkout = services.NewCheckoutService(a.Transactions, settingsRepo, a.Provider, cfg.Processor, logger)
	a.TransactionOps = services.NewTransactionService(a.Transactions, refundRepo, db, a.Provider, a.Reconciler, logger)
	a.Terminals = services.NewTerminalService(terminalRepo, resourceRepo, a.Provider, logger)
	a.PaymentLinks = services.NewPaymentLinkService(a.Transactions, settingsRepo, a.Provider, logger)
	a.Settings = services.NewSettingsService(settingsRepo, a.Provider, a.Provider, a.bus, logger)
	a.Webhooks = services.NewWebhookService(a.WebhookLogs, a.Transactions, refundRepo, settingsRepo, a.Provider, a.Reconciler, a.Terminals, logger)
	a.Redirect = services.NewRedirectService(a.Transactions, a.Reconciler, cfg.Redirect, logger)
	a.TerminalPayments = services.NewTerminalPaymentService(a.Transactions, terminalRepo, settingsRepo, db, a.Provider, nil, a.Reconciler, logger)

	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		a.kafkaQueue = queue.NewKafkaQueue(cfg.Kafka)
		a.closers = append(a.closers, a.kafkaQueue.Close)
		a.TerminalPayments.SetQueue(a.kafkaQueue)
		logger.Info("terminal payments queued on kafka", "brokers", brokers, "topic", cfg.Kafka.Topic)
	} else {
		a.inlineQueue = queue.NewInlineQueue(a.TerminalPayments, cfg.Processor.TillTimeout, logger)
		a.TerminalPayments.SetQueue(a.inlineQueue)
		logger.Info("terminal payments run in-process")
	}

	if err := a.Settings.Seed(ctx, cfg.Settings, cfg.Processor.BaseURL); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	return a, nil
}

func (a *App) newSettingsBus(ctx context.Context) settingsBus {
	if a.Config.Redis.Addr == "" {
		return cache.NoopSettingsBus{}
	}

	bus := cache.NewSettingsBus(a.Config.Redis, a.Logger)
	if err := bus.Ping(ctx); err != nil {
		a.Logger.Warn("redis unreachable, settings changes stay local until it recovers", "addr", a.Config.Redis.Addr, "error", err)
	}
	a.closers = append(a.closers, bus.Close)
	return bus
}

// Handler builds the HTTP surface with its middleware chain.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	validator, err := api.NewRequestValidator(ctx)
	if err != nil {
		return nil, err
	}

	h := handlers.NewHandlers(handlers.Services{
		Checkout:        a.Checkout,
		Transactions:    a.TransactionOps,
		TerminalPayment: a.TerminalPayments,
		Terminals:       a.Terminals,
		PaymentLinks:    a.PaymentLinks,
		Settings:        a.Settings,
		Webhooks:        a.Webhooks,
		Pages:           a.Redirect,
	}, a.Logger)

	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux)
	h.Register(mux)

	handler := middleware.OpenAPI(validator, "/api/", a.Logger)(mux)
	handler = middleware.Recovery(a.Logger)(handler)
	handler = middleware.Logging(a.Logger)(handler)
	handler = middleware.Timeout(a.Config.Server.ReadTimeout)(handler)
	return handler, nil
}

// RunBackground starts the workers and the settings listener. It returns a
// function that blocks until all of them have stopped after ctx is done.
func (a *App) RunBackground(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	start := func(run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	w := a.Config.Worker
	start(worker.NewSyncWorker(a.Transactions, a.Reconciler, w.SyncInterval, w.BatchSize, a.Logger).Start)
	start(worker.NewCleanupWorker(a.WebhookLogs, a.Transactions, w.CleanupInterval, w.WebhookLogRetentionDays, w.ArchiveAfterDays, a.Logger).Start)

	if a.kafkaQueue != nil {
		reader := queue.NewKafkaReader(a.Config.Kafka)
		start(worker.NewTerminalWorker(reader, a.TerminalPayments, a.Config.Processor.TillTimeout, a.Logger).Start)
	}

	start(func(ctx context.Context) {
		if err := a.bus.Listen(ctx, a.Provider.Invalidate); err != nil {
			a.Logger.Error("settings listener stopped", "error", err)
		}
	})

	return func() {
		wg.Wait()
		if a.inlineQueue != nil {
			a.inlineQueue.Wait()
		}
	}
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
