// Package service implements CRM lead management.
package service

import (
	"context"
	"errors"
	"strings"

	"carmantra_backend/internal/events"
	"carmantra_backend/internal/leads/repository"
	"carmantra_backend/internal/leads/transport"
	"carmantra_backend/platform/apperr"
	"carmantra_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	repo        *repository.Repository
	bus         events.Bus
	phoneRegion string
}

func New(repo *repository.Repository, bus events.Bus, phoneRegion string) *Service {
	return &Service{repo: repo, bus: bus, phoneRegion: phoneRegion}
}

func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	// Phones go in as E.164 so customer-view lookups match the
	// resolver's normalized mobile.
	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Phone:  phone.NormalizeE164(req.Phone, s.phoneRegion),
		Source: req.Source,
		Notes:  req.Notes,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	firstName, lastName := splitName(lead.Name)
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Contact: events.ContactFragment{
			FirstName: firstName,
			LastName:  lastName,
			Email:     lead.Email,
			Mobile:    lead.Phone,
		},
	})

	return toResponse(lead), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

func (s *Service) List(ctx context.Context, status, search string, limit, offset int) ([]transport.LeadResponse, error) {
	leads, err := s.repo.List(ctx, repository.ListLeadsParams{
		Status: status,
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, toResponse(lead))
	}
	return responses, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.Update(ctx, id, repository.UpdateLeadParams{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Phone:  phone.NormalizeE164(req.Phone, s.phoneRegion),
		Source: req.Source,
		Notes:  req.Notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}
	return nil
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		Status:    lead.Status,
		Notes:     lead.Notes,
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}
