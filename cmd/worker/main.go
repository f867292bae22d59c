package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/resolver"
	"carmantra_backend/internal/email"
	"carmantra_backend/internal/events"
	"carmantra_backend/internal/scheduler"
	syncrepo "carmantra_backend/internal/sync/repository"
	syncsvc "carmantra_backend/internal/sync/service"
	"carmantra_backend/platform/config"
	"carmantra_backend/platform/db"
	"carmantra_backend/platform/logger"
)

// The worker binary consumes queued sync runs. It shares the database and
// queue with the API server but registers no HTTP routes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting sync worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	if cfg.GetEmailEnabled() {
		sender := email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
		email.Subscribe(eventBus, sender, cfg, log)
		log.Info("email notifications enabled", "host", cfg.GetSMTPHost())
	}

	res := resolver.New(repository.New(pool), resolver.Options{
		Transactional: cfg.GetResolverTransactional(),
		PhoneRegion:   cfg.GetDefaultPhoneRegion(),
	})

	// The worker only executes runs; it never enqueues, so no Enqueuer.
	syncService := syncsvc.New(
		syncrepo.New(pool),
		syncsvc.NewPagers(pool),
		res,
		nil,
		eventBus,
		log,
		cfg.GetSyncBatchSize(),
	)

	worker, err := scheduler.NewWorker(cfg, syncService, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("sync worker stopped")
}
