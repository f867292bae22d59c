// Package transport defines the request and response DTOs for the leads module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"max=20"`
	Source string `json:"source" validate:"max=100"`
	Notes  string `json:"notes" validate:"max=4000"`
}

type UpdateLeadRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"max=20"`
	Source string `json:"source" validate:"max=100"`
	Notes  string `json:"notes" validate:"max=4000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

type LeadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
