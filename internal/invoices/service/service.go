// Package service implements invoice and quotation management.
package service

import (
	"context"
	"errors"
	"strings"

	"carmantra_backend/internal/events"
	"carmantra_backend/internal/invoices/repository"
	"carmantra_backend/internal/invoices/transport"
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

func (s *Service) CreateInvoice(ctx context.Context, req transport.CreateInvoiceRequest) (transport.InvoiceResponse, error) {
	invoice, err := s.repo.CreateInvoice(ctx, repository.CreateInvoiceParams{
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: phone.NormalizeE164(req.CustomerPhone, s.phoneRegion),
		VehicleMake:   req.VehicleMake,
		VehicleModel:  req.VehicleModel,
		VehiclePlate:  strings.TrimSpace(req.VehiclePlate),
		LineItems:     req.LineItems,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Total:         req.Total,
		InvoiceDate:   req.InvoiceDate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return transport.InvoiceResponse{}, apperr.Conflict("invoice number already exists")
		}
		return transport.InvoiceResponse{}, err
	}

	firstName, lastName := splitName(invoice.CustomerName)
	s.bus.Publish(ctx, events.InvoiceCreated{
		BaseEvent: events.NewBaseEvent(),
		InvoiceID: invoice.ID,
		Contact: events.ContactFragment{
			FirstName: firstName,
			LastName:  lastName,
			Email:     invoice.CustomerEmail,
			Mobile:    invoice.CustomerPhone,
		},
	})

	return toInvoiceResponse(invoice), nil
}

func (s *Service) GetInvoiceByID(ctx context.Context, id uuid.UUID) (transport.InvoiceResponse, error) {
	invoice, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.InvoiceResponse{}, apperr.NotFound("invoice not found")
		}
		return transport.InvoiceResponse{}, err
	}
	return toInvoiceResponse(invoice), nil
}

func (s *Service) ListInvoices(ctx context.Context, search string, limit, offset int) ([]transport.InvoiceResponse, error) {
	invoices, err := s.repo.ListInvoices(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		responses = append(responses, toInvoiceResponse(invoice))
	}
	return responses, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("invoice not found")
		}
		return err
	}
	return nil
}

func (s *Service) CreateQuotation(ctx context.Context, req transport.CreateQuotationRequest) (transport.QuotationResponse, error) {
	quotation, err := s.repo.CreateQuotation(ctx, repository.CreateQuotationParams{
		QuotationNumber: strings.TrimSpace(req.QuotationNumber),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   phone.NormalizeE164(req.CustomerPhone, s.phoneRegion),
		LineItems:       req.LineItems,
		Total:           req.Total,
		ValidUntil:      req.ValidUntil,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return transport.QuotationResponse{}, apperr.Conflict("quotation number already exists")
		}
		return transport.QuotationResponse{}, err
	}

	firstName, lastName := splitName(quotation.CustomerName)
	s.bus.Publish(ctx, events.QuotationCreated{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: quotation.ID,
		Contact: events.ContactFragment{
			FirstName: firstName,
			LastName:  lastName,
			Email:     quotation.CustomerEmail,
			Mobile:    quotation.CustomerPhone,
		},
	})

	return toQuotationResponse(quotation), nil
}

func (s *Service) GetQuotationByID(ctx context.Context, id uuid.UUID) (transport.QuotationResponse, error) {
	quotation, err := s.repo.GetQuotationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrQuotationNotFound) {
			return transport.QuotationResponse{}, apperr.NotFound("quotation not found")
		}
		return transport.QuotationResponse{}, err
	}
	return toQuotationResponse(quotation), nil
}

func (s *Service) ListQuotations(ctx context.Context, search string, limit, offset int) ([]transport.QuotationResponse, error) {
	quotations, err := s.repo.ListQuotations(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.QuotationResponse, 0, len(quotations))
	for _, quotation := range quotations {
		responses = append(responses, toQuotationResponse(quotation))
	}
	return responses, nil
}

func (s *Service) DeleteQuotation(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteQuotation(ctx, id); err != nil {
		if errors.Is(err, repository.ErrQuotationNotFound) {
			return apperr.NotFound("quotation not found")
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

func toInvoiceResponse(invoice repository.Invoice) transport.InvoiceResponse {
	return transport.InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerName:  invoice.CustomerName,
		CustomerEmail: invoice.CustomerEmail,
		CustomerPhone: invoice.CustomerPhone,
		VehicleMake:   invoice.VehicleMake,
		VehicleModel:  invoice.VehicleModel,
		VehiclePlate:  invoice.VehiclePlate,
		LineItems:     invoice.LineItems,
		Subtotal:      invoice.Subtotal,
		Tax:           invoice.Tax,
		Total:         invoice.Total,
		InvoiceDate:   invoice.InvoiceDate,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

func toQuotationResponse(quotation repository.Quotation) transport.QuotationResponse {
	return transport.QuotationResponse{
		ID:              quotation.ID,
		QuotationNumber: quotation.QuotationNumber,
		CustomerName:    quotation.CustomerName,
		CustomerEmail:   quotation.CustomerEmail,
		CustomerPhone:   quotation.CustomerPhone,
		LineItems:       quotation.LineItems,
		Total:           quotation.Total,
		ValidUntil:      quotation.ValidUntil,
		QuoteDate:       quotation.QuoteDate,
		CreatedAt:       quotation.CreatedAt,
		UpdatedAt:       quotation.UpdatedAt,
	}
}
