// Package ports defines the read-side interfaces the customers module needs
// from sibling modules. Adapters in internal/adapters satisfy them, keeping
// the customer aggregation layer free of direct dependencies on the
// bookings, leads and invoices packages.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ServiceRecord is a booking row as seen by the aggregator: the denormalized
// contact and vehicle fields it was created with.
type ServiceRecord struct {
	ID            uuid.UUID
	CustomerName  string
	MobileNo      string
	Email         string
	VehicleBrand  string
	ModelName     string
	NumberPlate   string
	FuelType      string
	Services      []string
	ScheduledDate time.Time
	Status        string
	TotalAmount   float64
}

// LeadRecord is a CRM lead row matched by contact fields.
type LeadRecord struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Source    string
	Status    string
	Notes     string
	CreatedAt time.Time
}

// InvoiceRecord is an invoice row matched by customer email.
type InvoiceRecord struct {
	ID            uuid.UUID
	InvoiceNumber string
	CustomerName  string
	VehicleMake   string
	VehicleModel  string
	VehiclePlate  string
	Total         float64
	InvoiceDate   time.Time
}

// ServiceReader reads booking rows by denormalized contact fields.
type ServiceReader interface {
	ListByMobile(ctx context.Context, mobile string) ([]ServiceRecord, error)
	ListByEmail(ctx context.Context, email string) ([]ServiceRecord, error)
}

// LeadReader reads CRM lead rows by denormalized contact fields.
type LeadReader interface {
	ListByEmail(ctx context.Context, email string) ([]LeadRecord, error)
	ListByPhone(ctx context.Context, phone string) ([]LeadRecord, error)
}

// InvoiceReader reads invoice rows by customer email.
type InvoiceReader interface {
	ListByCustomerEmail(ctx context.Context, email string) ([]InvoiceRecord, error)
}
