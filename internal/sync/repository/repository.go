// Package repository persists bulk sync runs and their checkpoints. The
// checkpoint (source + cursor) lets an interrupted run resume where it
// stopped instead of reprocessing from the start.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("sync run not found")

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Run struct {
	ID         uuid.UUID
	Status     string
	Source     string
	Cursor     *uuid.UUID
	Synced     int
	Skipped    int
	Error      *string
	StartedAt  time.Time
	FinishedAt *time.Time
	UpdatedAt  time.Time
}

const runColumns = `id, status, source, cursor, synced, skipped, error, started_at, finished_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateRun(ctx context.Context) (Run, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sync_runs DEFAULT VALUES
		RETURNING `+runColumns)
	return scanRun(row)
}

func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM sync_runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+runColumns+` FROM sync_runs ORDER BY started_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *Repository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sync_runs SET status = $2, updated_at = now() WHERE id = $1
	`, id, StatusRunning)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveCheckpoint records how far the run has progressed. The cursor is the
// id of the last processed row in the named source.
func (r *Repository) SaveCheckpoint(ctx context.Context, id uuid.UUID, source string, cursor *uuid.UUID, synced, skipped int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sync_runs
		SET source = $2, cursor = $3, synced = $4, skipped = $5, updated_at = now()
		WHERE id = $1
	`, id, source, cursor, synced, skipped)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, synced, skipped int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sync_runs
		SET status = $2, synced = $3, skipped = $4, finished_at = now(), updated_at = now()
		WHERE id = $1
	`, id, StatusCompleted, synced, skipped)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sync_runs
		SET status = $2, error = $3, finished_at = now(), updated_at = now()
		WHERE id = $1
	`, id, StatusFailed, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Status, &run.Source, &run.Cursor, &run.Synced,
		&run.Skipped, &run.Error, &run.StartedAt, &run.FinishedAt, &run.UpdatedAt)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}
