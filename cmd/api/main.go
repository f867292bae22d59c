package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carmantra_backend/internal/adapters"
	"carmantra_backend/internal/auth"
	"carmantra_backend/internal/bookings"
	"carmantra_backend/internal/customers"
	"carmantra_backend/internal/email"
	"carmantra_backend/internal/events"
	apphttp "carmantra_backend/internal/http"
	"carmantra_backend/internal/http/router"
	"carmantra_backend/internal/invoices"
	"carmantra_backend/internal/leads"
	"carmantra_backend/internal/scheduler"
	"carmantra_backend/internal/storage"
	syncmod "carmantra_backend/internal/sync"
	syncsvc "carmantra_backend/internal/sync/service"
	"carmantra_backend/platform/config"
	"carmantra_backend/platform/db"
	"carmantra_backend/platform/logger"
	"carmantra_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Object storage for booking attachments. Optional; booking upload
	// endpoints reject requests when it is not configured.
	var objectStore storage.ObjectStore
	if cfg.IsMinIOEnabled() {
		store, err := storage.NewMinIOStore(cfg)
		if err != nil {
			log.Error("failed to initialize object storage", "error", err)
			panic("failed to initialize object storage: " + err.Error())
		}
		bucket := cfg.GetMinioBucketBookingAttachments()
		if err := withRetry(ctx, log, "ensure attachments bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucketExists(ctx, bucket)
		}); err != nil {
			log.Error("failed to ensure attachments bucket exists", "error", err, "bucket", bucket)
			panic("failed to ensure attachments bucket exists: " + err.Error())
		}
		objectStore = store
		log.Info("object storage initialized", "bucket", bucket)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; booking attachments disabled")
	}

	// Task queue client for the background sync worker. Optional; starting
	// a sync run without it fails with a config error.
	var enqueuer syncsvc.Enqueuer
	if cfg.GetRedisURL() != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize task queue client", "error", err)
			panic("failed to initialize task queue client: " + err.Error())
		}
		defer client.Close()
		enqueuer = client
		log.Info("task queue client initialized")
	} else {
		log.Warn("REDIS_URL not configured; background sync disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, val, cfg)
	phoneRegion := cfg.GetDefaultPhoneRegion()
	bookingsModule := bookings.NewModule(pool, eventBus, objectStore, cfg.GetMinioBucketBookingAttachments(), val, phoneRegion)
	leadsModule := leads.NewModule(pool, eventBus, val, phoneRegion)
	invoicesModule := invoices.NewModule(pool, eventBus, val, phoneRegion)

	customersModule := customers.NewModule(pool, eventBus, customers.Readers{
		Services: adapters.NewBookingReader(bookingsModule.Repository()),
		Leads:    adapters.NewLeadReader(leadsModule.Repository()),
		Invoices: adapters.NewInvoiceReader(invoicesModule.Repository()),
	}, val, cfg, log)

	syncModule := syncmod.NewModule(pool, customersModule.Resolver(), enqueuer, eventBus, cfg, log)

	// Email notifications subscribe to domain events (not HTTP-facing)
	if cfg.GetEmailEnabled() {
		sender := email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
		email.Subscribe(eventBus, sender, cfg, log)
		log.Info("email notifications enabled", "host", cfg.GetSMTPHost())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			bookingsModule,
			leadsModule,
			invoicesModule,
			customersModule,
			syncModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
