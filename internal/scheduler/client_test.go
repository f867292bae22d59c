package scheduler

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func TestEnqueueSyncAllQueuesTask(t *testing.T) {
	mr := miniredis.RunT(t)

	opt := asynq.RedisClientOpt{Addr: mr.Addr()}
	client := &Client{client: asynq.NewClient(opt), queue: "default"}
	defer client.Close()

	runID := uuid.New()
	if err := client.EnqueueSyncAll(context.Background(), runID); err != nil {
		t.Fatalf("EnqueueSyncAll: %v", err)
	}

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskCustomersSyncAll {
		t.Fatalf("expected task type %s, got %s", TaskCustomersSyncAll, tasks[0].Type)
	}
	if !strings.Contains(string(tasks[0].Payload), runID.String()) {
		t.Fatalf("payload missing run id: %s", tasks[0].Payload)
	}
}

func TestParseCustomersSyncAllPayloadRoundTrip(t *testing.T) {
	runID := uuid.New()
	task, err := NewCustomersSyncAllTask(CustomersSyncAllPayload{RunID: runID.String()})
	if err != nil {
		t.Fatalf("NewCustomersSyncAllTask: %v", err)
	}

	payload, err := ParseCustomersSyncAllPayload(task)
	if err != nil {
		t.Fatalf("ParseCustomersSyncAllPayload: %v", err)
	}
	if payload.RunID != runID.String() {
		t.Fatalf("expected %s, got %s", runID, payload.RunID)
	}
}
