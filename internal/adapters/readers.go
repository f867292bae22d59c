// Package adapters bridges sibling modules into the read interfaces the
// customers module declares, so aggregation never imports bookings, leads
// or invoices directly.
package adapters

import (
	"context"

	bookingrepo "carmantra_backend/internal/bookings/repository"
	"carmantra_backend/internal/customers/ports"
	invoicerepo "carmantra_backend/internal/invoices/repository"
	leadrepo "carmantra_backend/internal/leads/repository"
)

// BookingReader adapts the bookings repository to ports.ServiceReader.
type BookingReader struct {
	repo *bookingrepo.Repository
}

func NewBookingReader(repo *bookingrepo.Repository) *BookingReader {
	return &BookingReader{repo: repo}
}

func (r *BookingReader) ListByMobile(ctx context.Context, mobile string) ([]ports.ServiceRecord, error) {
	bookings, err := r.repo.ListByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	return toServiceRecords(bookings), nil
}

func (r *BookingReader) ListByEmail(ctx context.Context, email string) ([]ports.ServiceRecord, error) {
	bookings, err := r.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toServiceRecords(bookings), nil
}

func toServiceRecords(bookings []bookingrepo.Booking) []ports.ServiceRecord {
	records := make([]ports.ServiceRecord, 0, len(bookings))
	for _, booking := range bookings {
		record := ports.ServiceRecord{
			ID:           booking.ID,
			CustomerName: booking.CustomerName,
			MobileNo:     booking.MobileNo,
			Email:        booking.Email,
			VehicleBrand: booking.VehicleBrand,
			ModelName:    booking.ModelName,
			NumberPlate:  booking.NumberPlate,
			FuelType:     booking.FuelType,
			Services:     booking.Services,
			Status:       booking.Status,
			TotalAmount:  booking.TotalAmount,
		}
		if booking.ScheduledDate != nil {
			record.ScheduledDate = *booking.ScheduledDate
		}
		records = append(records, record)
	}
	return records
}

// LeadReader adapts the leads repository to ports.LeadReader.
type LeadReader struct {
	repo *leadrepo.Repository
}

func NewLeadReader(repo *leadrepo.Repository) *LeadReader {
	return &LeadReader{repo: repo}
}

func (r *LeadReader) ListByEmail(ctx context.Context, email string) ([]ports.LeadRecord, error) {
	leads, err := r.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toLeadRecords(leads), nil
}

func (r *LeadReader) ListByPhone(ctx context.Context, phone string) ([]ports.LeadRecord, error) {
	leads, err := r.repo.ListByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return toLeadRecords(leads), nil
}

func toLeadRecords(leads []leadrepo.Lead) []ports.LeadRecord {
	records := make([]ports.LeadRecord, 0, len(leads))
	for _, lead := range leads {
		records = append(records, ports.LeadRecord{
			ID:        lead.ID,
			Name:      lead.Name,
			Email:     lead.Email,
			Phone:     lead.Phone,
			Source:    lead.Source,
			Status:    lead.Status,
			Notes:     lead.Notes,
			CreatedAt: lead.CreatedAt,
		})
	}
	return records
}

// InvoiceReader adapts the invoices repository to ports.InvoiceReader.
type InvoiceReader struct {
	repo *invoicerepo.Repository
}

func NewInvoiceReader(repo *invoicerepo.Repository) *InvoiceReader {
	return &InvoiceReader{repo: repo}
}

func (r *InvoiceReader) ListByCustomerEmail(ctx context.Context, email string) ([]ports.InvoiceRecord, error) {
	invoices, err := r.repo.ListByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	records := make([]ports.InvoiceRecord, 0, len(invoices))
	for _, invoice := range invoices {
		records = append(records, ports.InvoiceRecord{
			ID:            invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			CustomerName:  invoice.CustomerName,
			VehicleMake:   invoice.VehicleMake,
			VehicleModel:  invoice.VehicleModel,
			VehiclePlate:  invoice.VehiclePlate,
			Total:         invoice.Total,
			InvoiceDate:   invoice.InvoiceDate,
		})
	}
	return records, nil
}
