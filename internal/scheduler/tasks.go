// Package scheduler wires the background task queue: task definitions, the
// enqueue client and the worker that processes them.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCustomersSyncAll = "customers:sync_all"

type CustomersSyncAllPayload struct {
	RunID string `json:"runId"`
}

func NewCustomersSyncAllTask(payload CustomersSyncAllPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCustomersSyncAll, data), nil
}

func ParseCustomersSyncAllPayload(task *asynq.Task) (CustomersSyncAllPayload, error) {
	var payload CustomersSyncAllPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CustomersSyncAllPayload{}, err
	}
	return payload, nil
}
