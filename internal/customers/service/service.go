// Package service implements customer management: canonical record CRUD and
// the cross-source aggregation views built on top of it.
package service

import (
	"context"
	"errors"

	"carmantra_backend/internal/customers/repository"
	"carmantra_backend/internal/customers/transport"
	"carmantra_backend/platform/apperr"
	"carmantra_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	repo        *repository.Repository
	agg         *Aggregator
	phoneRegion string
}

func New(repo *repository.Repository, agg *Aggregator, phoneRegion string) *Service {
	return &Service{repo: repo, agg: agg, phoneRegion: phoneRegion}
}

func (s *Service) Create(ctx context.Context, req transport.CreateCustomerRequest) (transport.CustomerResponse, error) {
	customer, err := s.repo.Create(ctx, repository.CreateCustomerParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Mobile:    phone.NormalizeE164(req.Mobile, s.phoneRegion),
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		Status:    "active",
	})
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CustomerResponse{}, apperr.NotFound("customer not found")
		}
		return transport.CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *Service) List(ctx context.Context, status, search string, limit, offset int) ([]transport.CustomerResponse, error) {
	customers, err := s.repo.List(ctx, repository.ListCustomersParams{
		Status: status,
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]transport.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, toCustomerResponse(customer))
	}
	return responses, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (transport.CustomerResponse, error) {
	customer, err := s.repo.Update(ctx, id, repository.UpdateCustomerParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Mobile:    phone.NormalizeE164(req.Mobile, s.phoneRegion),
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CustomerResponse{}, apperr.NotFound("customer not found")
		}
		return transport.CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("customer not found")
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("customer not found")
		}
		return err
	}
	return nil
}

func (s *Service) AddVehicle(ctx context.Context, customerID uuid.UUID, req transport.AddVehicleRequest) (repository.Vehicle, error) {
	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Vehicle{}, apperr.NotFound("customer not found")
		}
		return repository.Vehicle{}, err
	}

	return s.repo.AddVehicle(ctx, repository.CreateVehicleParams{
		CustomerID: customerID,
		Plate:      req.Plate,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		VIN:        req.VIN,
		Color:      req.Color,
		FuelType:   req.FuelType,
	})
}

func (s *Service) DeleteVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error {
	if err := s.repo.DeleteVehicle(ctx, customerID, vehicleID); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return apperr.NotFound("vehicle not found")
		}
		return err
	}
	return nil
}

func (s *Service) ListNotes(ctx context.Context, customerID uuid.UUID) ([]transport.NoteResponse, error) {
	notes, err := s.repo.ListNotes(ctx, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.NoteResponse, 0, len(notes))
	for _, note := range notes {
		responses = append(responses, transport.NoteResponse{
			ID:        note.ID,
			AuthorID:  note.AuthorID,
			Body:      note.Body,
			CreatedAt: note.CreatedAt,
		})
	}
	return responses, nil
}

func (s *Service) AddNote(ctx context.Context, customerID uuid.UUID, authorID *uuid.UUID, body string) (transport.NoteResponse, error) {
	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.NoteResponse{}, apperr.NotFound("customer not found")
		}
		return transport.NoteResponse{}, err
	}

	note, err := s.repo.AddNote(ctx, customerID, authorID, body)
	if err != nil {
		return transport.NoteResponse{}, err
	}
	return transport.NoteResponse{
		ID:        note.ID,
		AuthorID:  note.AuthorID,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
	}, nil
}

func (s *Service) entity(ctx context.Context, id uuid.UUID) (repository.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Customer{}, apperr.NotFound("customer not found")
		}
		return repository.Customer{}, err
	}
	return customer, nil
}

func (s *Service) ServiceHistory(ctx context.Context, id uuid.UUID) ([]transport.ServiceEntry, error) {
	customer, err := s.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.agg.ServiceHistory(ctx, customer)
}

func (s *Service) Vehicles(ctx context.Context, id uuid.UUID) ([]transport.VehicleView, error) {
	customer, err := s.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.agg.Vehicles(ctx, customer)
}

func (s *Service) Leads(ctx context.Context, id uuid.UUID) ([]transport.LeadView, error) {
	customer, err := s.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.agg.Leads(ctx, customer)
}

func (s *Service) Invoices(ctx context.Context, id uuid.UUID) ([]transport.InvoiceView, error) {
	customer, err := s.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.agg.Invoices(ctx, customer)
}

func (s *Service) ActivityHistory(ctx context.Context, id uuid.UUID) ([]transport.ActivityItem, error) {
	customer, err := s.entity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.agg.ActivityHistory(ctx, customer)
}

// Profile assembles the canonical record and every aggregated view in one
// call.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (transport.ProfileResponse, error) {
	customer, err := s.entity(ctx, id)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	vehicles, err := s.agg.Vehicles(ctx, customer)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	services, err := s.agg.ServiceHistory(ctx, customer)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	leads, err := s.agg.Leads(ctx, customer)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	invoices, err := s.agg.Invoices(ctx, customer)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	activity, err := s.agg.ActivityHistory(ctx, customer)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	return transport.ProfileResponse{
		Customer: toCustomerResponse(customer),
		Vehicles: vehicles,
		Services: services,
		Leads:    leads,
		Invoices: invoices,
		Activity: activity,
	}, nil
}

func toCustomerResponse(customer repository.Customer) transport.CustomerResponse {
	return transport.CustomerResponse{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Mobile:    customer.Mobile,
		Address:   customer.Address,
		City:      customer.City,
		State:     customer.State,
		Country:   customer.Country,
		Status:    customer.Status,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}
