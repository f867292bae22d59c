// Package service implements the bulk customer sync job: it walks every
// source table, runs each row's contact fragment through the identity
// resolver, and checkpoints progress so an interrupted run resumes instead
// of starting over.
package service

import (
	"context"
	"fmt"

	custrepo "carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/resolver"
	"carmantra_backend/internal/events"
	"carmantra_backend/internal/sync/repository"
	"carmantra_backend/platform/apperr"
	"carmantra_backend/platform/logger"

	"github.com/google/uuid"
)

// RunStore persists sync runs and checkpoints.
type RunStore interface {
	CreateRun(ctx context.Context) (repository.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (repository.Run, error)
	ListRuns(ctx context.Context, limit int) ([]repository.Run, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	SaveCheckpoint(ctx context.Context, id uuid.UUID, source string, cursor *uuid.UUID, synced, skipped int) error
	MarkCompleted(ctx context.Context, id uuid.UUID, synced, skipped int) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

// CustomerResolver resolves one contact fragment to a canonical customer.
type CustomerResolver interface {
	Resolve(ctx context.Context, fragment resolver.Fragment) (*custrepo.Customer, bool, error)
}

// Enqueuer hands a created run to the background worker.
type Enqueuer interface {
	EnqueueSyncAll(ctx context.Context, runID uuid.UUID) error
}

type Service struct {
	runs      RunStore
	pagers    []Pager
	resolver  CustomerResolver
	enqueuer  Enqueuer
	bus       events.Bus
	log       *logger.Logger
	batchSize int
}

func New(runs RunStore, pagers []Pager, res CustomerResolver, enqueuer Enqueuer, bus events.Bus, log *logger.Logger, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Service{
		runs:      runs,
		pagers:    pagers,
		resolver:  res,
		enqueuer:  enqueuer,
		bus:       bus,
		log:       log,
		batchSize: batchSize,
	}
}

// StartRun creates a pending run and enqueues it for the worker.
func (s *Service) StartRun(ctx context.Context) (repository.Run, error) {
	if s.enqueuer == nil {
		return repository.Run{}, apperr.BadRequest("background worker is not configured")
	}

	run, err := s.runs.CreateRun(ctx)
	if err != nil {
		return repository.Run{}, err
	}
	if err := s.enqueuer.EnqueueSyncAll(ctx, run.ID); err != nil {
		msg := fmt.Sprintf("enqueue failed: %v", err)
		if markErr := s.runs.MarkFailed(ctx, run.ID, msg); markErr != nil {
			s.log.Error("failed to mark sync run failed", "runId", run.ID, "error", markErr)
		}
		return repository.Run{}, err
	}
	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (repository.Run, error) {
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return repository.Run{}, apperr.NotFound("sync run not found")
		}
		return repository.Run{}, err
	}
	return run, nil
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]repository.Run, error) {
	return s.runs.ListRuns(ctx, limit)
}

// Execute processes the run to completion. A run that already completed is
// a no-op; a run with a saved checkpoint picks up at that source and
// cursor. Counters carry over, so totals stay correct across restarts.
// Any error fails the run with the checkpoint preserved and is returned to
// the task queue for retry.
func (s *Service) Execute(ctx context.Context, runID uuid.UUID) error {
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run.Status == repository.StatusCompleted {
		return nil
	}

	if err := s.runs.MarkRunning(ctx, runID); err != nil {
		return err
	}

	synced, skipped := run.Synced, run.Skipped

	startIdx := 0
	var cursor *uuid.UUID
	if run.Source != "" {
		found := false
		for i, pager := range s.pagers {
			if pager.Source() == run.Source {
				startIdx = i
				cursor = run.Cursor
				found = true
				break
			}
		}
		// An unknown checkpoint source means the run cannot resume where
		// it left off; restarting from the first source would replay rows
		// into the carried-over counters.
		if !found {
			return s.fail(ctx, runID, fmt.Errorf("unknown checkpoint source %q", run.Source))
		}
	}

	for i := startIdx; i < len(s.pagers); i++ {
		pager := s.pagers[i]
		if i != startIdx {
			cursor = nil
		}

		for {
			records, err := pager.Page(ctx, cursor, s.batchSize)
			if err != nil {
				return s.fail(ctx, runID, fmt.Errorf("page %s: %w", pager.Source(), err))
			}
			if len(records) == 0 {
				break
			}

			for _, record := range records {
				customer, _, err := s.resolver.Resolve(ctx, record.Fragment)
				if err != nil {
					return s.fail(ctx, runID, fmt.Errorf("resolve %s %s: %w", pager.Source(), record.ID, err))
				}
				if customer != nil {
					synced++
				} else {
					skipped++
				}
			}

			last := records[len(records)-1].ID
			cursor = &last
			if err := s.runs.SaveCheckpoint(ctx, runID, pager.Source(), cursor, synced, skipped); err != nil {
				return s.fail(ctx, runID, fmt.Errorf("checkpoint: %w", err))
			}
			s.log.SyncProgress(runID.String(), pager.Source(), synced, skipped)

			if len(records) < s.batchSize {
				break
			}
		}
	}

	if err := s.runs.MarkCompleted(ctx, runID, synced, skipped); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.SyncCompleted{
		BaseEvent: events.NewBaseEvent(),
		RunID:     runID,
		Synced:    synced,
		Skipped:   skipped,
	})
	return nil
}

func (s *Service) fail(ctx context.Context, runID uuid.UUID, cause error) error {
	if err := s.runs.MarkFailed(ctx, runID, cause.Error()); err != nil {
		s.log.Error("failed to mark sync run failed", "runId", runID, "error", err)
	}
	s.bus.Publish(ctx, events.SyncCompleted{
		BaseEvent: events.NewBaseEvent(),
		RunID:     runID,
		Failed:    true,
		Error:     cause.Error(),
	})
	return cause
}
