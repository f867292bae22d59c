// Package events re-exports the platform event bus and defines the
// application's domain events.
package events

import (
	"time"

	platformevents "carmantra_backend/platform/events"
	"carmantra_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-exports so modules can depend on internal/events only.
type (
	Event       = platformevents.Event
	BaseEvent   = platformevents.BaseEvent
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	Bus         = platformevents.Bus
	InMemoryBus = platformevents.InMemoryBus
)

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent { return platformevents.NewBaseEvent() }

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// ContactFragment carries the denormalized contact fields a source record
// exposes for customer identity resolution.
type ContactFragment struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Address   string
	City      string
	State     string
	Country   string
}

// BookingCreated is published when a service booking is created.
type BookingCreated struct {
	BaseEvent
	BookingID     uuid.UUID
	Contact       ContactFragment
	ServiceNames  []string
	ScheduledDate *time.Time
}

// EventName returns the event identifier.
func (BookingCreated) EventName() string { return "bookings.created" }

// LeadCreated is published when a CRM lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID  uuid.UUID
	Contact ContactFragment
}

// EventName returns the event identifier.
func (LeadCreated) EventName() string { return "leads.created" }

// InvoiceCreated is published when an invoice is created.
type InvoiceCreated struct {
	BaseEvent
	InvoiceID uuid.UUID
	Contact   ContactFragment
}

// EventName returns the event identifier.
func (InvoiceCreated) EventName() string { return "invoices.created" }

// QuotationCreated is published when a quotation is created.
type QuotationCreated struct {
	BaseEvent
	QuotationID uuid.UUID
	Contact     ContactFragment
}

// EventName returns the event identifier.
func (QuotationCreated) EventName() string { return "quotations.created" }

// SyncCompleted is published when a bulk customer sync run finishes.
type SyncCompleted struct {
	BaseEvent
	RunID   uuid.UUID
	Synced  int
	Skipped int
	Failed  bool
	Error   string
}

// EventName returns the event identifier.
func (SyncCompleted) EventName() string { return "sync.completed" }
