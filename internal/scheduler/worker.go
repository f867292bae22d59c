package scheduler

import (
	"context"
	"fmt"

	"carmantra_backend/platform/config"
	"carmantra_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// RunExecutor executes a sync run to completion.
type RunExecutor interface {
	Execute(ctx context.Context, runID uuid.UUID) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	executor RunExecutor
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, executor RunExecutor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		executor: executor,
		log:      log,
	}

	mux.HandleFunc(TaskCustomersSyncAll, w.handleCustomersSyncAll)

	return w, nil
}

func (w *Worker) handleCustomersSyncAll(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCustomersSyncAllPayload(task)
	if err != nil {
		return err
	}

	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		return err
	}

	w.log.Info("processing customer sync run", "runId", runID)
	return w.executor.Execute(ctx, runID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
