package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	custrepo "carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/resolver"
	"carmantra_backend/internal/events"
	"carmantra_backend/internal/sync/repository"
	"carmantra_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRunStore struct {
	mu          sync.Mutex
	run         repository.Run
	checkpoints int
}

func (s *fakeRunStore) CreateRun(_ context.Context) (repository.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = repository.Run{ID: uuid.New(), Status: repository.StatusPending}
	return s.run, nil
}

func (s *fakeRunStore) GetRun(_ context.Context, _ uuid.UUID) (repository.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run, nil
}

func (s *fakeRunStore) ListRuns(_ context.Context, _ int) ([]repository.Run, error) {
	return []repository.Run{s.run}, nil
}

func (s *fakeRunStore) MarkRunning(_ context.Context, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Status = repository.StatusRunning
	return nil
}

func (s *fakeRunStore) SaveCheckpoint(_ context.Context, _ uuid.UUID, source string, cursor *uuid.UUID, synced, skipped int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints++
	s.run.Source = source
	s.run.Cursor = cursor
	s.run.Synced = synced
	s.run.Skipped = skipped
	return nil
}

func (s *fakeRunStore) MarkCompleted(_ context.Context, _ uuid.UUID, synced, skipped int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Status = repository.StatusCompleted
	s.run.Synced = synced
	s.run.Skipped = skipped
	return nil
}

func (s *fakeRunStore) MarkFailed(_ context.Context, _ uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run.Status = repository.StatusFailed
	s.run.Error = &message
	return nil
}

type fakePager struct {
	source string
	items  []SourceRecord
	err    error
	calls  int
	starts []*uuid.UUID
}

func (p *fakePager) Source() string { return p.source }

func (p *fakePager) Page(_ context.Context, after *uuid.UUID, limit int) ([]SourceRecord, error) {
	p.calls++
	p.starts = append(p.starts, after)
	if p.err != nil {
		return nil, p.err
	}

	start := 0
	if after != nil {
		for i, item := range p.items {
			if item.ID == *after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end], nil
}

type fakeResolver struct {
	mu       sync.Mutex
	resolved int
	err      error
}

func (r *fakeResolver) Resolve(_ context.Context, fragment resolver.Fragment) (*custrepo.Customer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, false, r.err
	}
	if fragment.Email == "" && fragment.Mobile == "" {
		return nil, false, nil
	}
	r.resolved++
	return &custrepo.Customer{ID: uuid.New()}, false, nil
}

type captureBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) PublishSync(_ context.Context, event events.Event) error {
	b.Publish(context.Background(), event)
	return nil
}

func (b *captureBus) Subscribe(_ string, _ events.Handler) {}

func record(email string) SourceRecord {
	return SourceRecord{ID: uuid.New(), Fragment: resolver.Fragment{Email: email}}
}

func newTestService(store *fakeRunStore, pagers []Pager, res CustomerResolver, bus events.Bus, batchSize int) *Service {
	return New(store, pagers, res, nil, bus, logger.New("development"), batchSize)
}

func TestExecuteCountsSyncedAndSkipped(t *testing.T) {
	store := &fakeRunStore{}
	run, _ := store.CreateRun(context.Background())

	bookings := &fakePager{source: "bookings", items: []SourceRecord{
		record("a@example.com"),
		{ID: uuid.New()}, // no identity fields
		record("b@example.com"),
	}}
	leads := &fakePager{source: "leads", items: []SourceRecord{
		record("c@example.com"),
	}}

	bus := &captureBus{}
	svc := newTestService(store, []Pager{bookings, leads}, &fakeResolver{}, bus, 10)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if store.run.Status != repository.StatusCompleted {
		t.Fatalf("expected completed, got %s", store.run.Status)
	}
	if store.run.Synced != 3 || store.run.Skipped != 1 {
		t.Fatalf("expected synced=3 skipped=1, got %d/%d", store.run.Synced, store.run.Skipped)
	}

	done, ok := bus.events[len(bus.events)-1].(events.SyncCompleted)
	if !ok || done.Failed {
		t.Fatalf("expected successful SyncCompleted event, got %+v", bus.events)
	}
	if done.Synced != 3 || done.Skipped != 1 {
		t.Fatalf("event carries wrong counts: %+v", done)
	}
}

func TestExecuteResumesFromCheckpoint(t *testing.T) {
	store := &fakeRunStore{}
	run, _ := store.CreateRun(context.Background())

	leadItems := []SourceRecord{record("a@example.com"), record("b@example.com"), record("c@example.com")}
	checkpointID := leadItems[0].ID

	store.run.Status = repository.StatusFailed
	store.run.Source = "leads"
	store.run.Cursor = &checkpointID
	store.run.Synced = 5
	store.run.Skipped = 2

	bookings := &fakePager{source: "bookings", items: []SourceRecord{record("old@example.com")}}
	leads := &fakePager{source: "leads", items: leadItems}
	invoices := &fakePager{source: "invoices"}

	svc := newTestService(store, []Pager{bookings, leads, invoices}, &fakeResolver{}, &captureBus{}, 10)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if bookings.calls != 0 {
		t.Fatalf("already-finished source must not be re-read, got %d calls", bookings.calls)
	}
	if len(leads.starts) == 0 || leads.starts[0] == nil || *leads.starts[0] != checkpointID {
		t.Fatalf("leads must resume after the checkpoint cursor")
	}
	if store.run.Synced != 7 || store.run.Skipped != 2 {
		t.Fatalf("counters must carry over, got %d/%d", store.run.Synced, store.run.Skipped)
	}
}

func TestExecuteCheckpointsEveryBatch(t *testing.T) {
	store := &fakeRunStore{}
	run, _ := store.CreateRun(context.Background())

	items := make([]SourceRecord, 0, 5)
	for i := 0; i < 5; i++ {
		items = append(items, record("x@example.com"))
	}
	bookings := &fakePager{source: "bookings", items: items}

	svc := newTestService(store, []Pager{bookings}, &fakeResolver{}, &captureBus{}, 2)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// 5 records at batch size 2 means pages of 2, 2 and 1.
	if store.checkpoints != 3 {
		t.Fatalf("expected 3 checkpoints, got %d", store.checkpoints)
	}
	if store.run.Synced != 5 {
		t.Fatalf("expected 5 synced, got %d", store.run.Synced)
	}
}

func TestExecuteFailsRunAndKeepsCheckpoint(t *testing.T) {
	store := &fakeRunStore{}
	run, _ := store.CreateRun(context.Background())

	bookings := &fakePager{source: "bookings", items: []SourceRecord{record("a@example.com"), record("b@example.com")}}
	leads := &fakePager{source: "leads", err: errors.New("connection reset")}

	bus := &captureBus{}
	svc := newTestService(store, []Pager{bookings, leads}, &fakeResolver{}, bus, 10)

	if err := svc.Execute(context.Background(), run.ID); err == nil {
		t.Fatal("expected error from failing source")
	}

	if store.run.Status != repository.StatusFailed {
		t.Fatalf("expected failed status, got %s", store.run.Status)
	}
	if store.run.Source != "bookings" || store.run.Cursor == nil {
		t.Fatalf("checkpoint from the completed source must survive, got %+v", store.run)
	}

	done, ok := bus.events[len(bus.events)-1].(events.SyncCompleted)
	if !ok || !done.Failed {
		t.Fatalf("expected failed SyncCompleted event")
	}
}

func TestExecuteCompletedRunIsNoop(t *testing.T) {
	store := &fakeRunStore{}
	run, _ := store.CreateRun(context.Background())
	store.run.Status = repository.StatusCompleted

	bookings := &fakePager{source: "bookings", items: []SourceRecord{record("a@example.com")}}
	svc := newTestService(store, []Pager{bookings}, &fakeResolver{}, &captureBus{}, 10)

	if err := svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if bookings.calls != 0 {
		t.Fatalf("completed run must not touch sources")
	}
}

func TestExecuteFailsOnUnknownCheckpointSource(t *testing.T) {
	store := &fakeRunStore{}
	run, _ := store.CreateRun(context.Background())

	// Checkpoint from a source no pager serves. Restarting from the first
	// source would replay rows into the carried-over counters, so the run
	// must fail instead.
	store.run.Status = repository.StatusFailed
	store.run.Source = "appointments"
	store.run.Synced = 5

	bookings := &fakePager{source: "bookings", items: []SourceRecord{record("a@example.com")}}
	svc := newTestService(store, []Pager{bookings}, &fakeResolver{}, &captureBus{}, 10)

	if err := svc.Execute(context.Background(), run.ID); err == nil {
		t.Fatal("expected error for unknown checkpoint source")
	}
	if bookings.calls != 0 {
		t.Fatalf("expected no rows paged, got %d calls", bookings.calls)
	}
	if store.run.Status != repository.StatusFailed {
		t.Fatalf("expected failed, got %s", store.run.Status)
	}
}
