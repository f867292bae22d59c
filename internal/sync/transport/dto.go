// Package transport defines the response DTOs for the sync module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type RunResponse struct {
	ID         uuid.UUID  `json:"id"`
	Status     string     `json:"status"`
	Source     string     `json:"source,omitempty"`
	Cursor     *uuid.UUID `json:"cursor,omitempty"`
	Synced     int        `json:"synced"`
	Skipped    int        `json:"skipped"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
