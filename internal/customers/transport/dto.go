// Package transport defines the request and response DTOs for the customers module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Mobile    string `json:"mobile" validate:"max=20"`
	Address   string `json:"address" validate:"max=500"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
}

type UpdateCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Mobile    string `json:"mobile" validate:"max=20"`
	Address   string `json:"address" validate:"max=500"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type AddVehicleRequest struct {
	Plate    string `json:"plate" validate:"required,max=20"`
	Make     string `json:"make" validate:"max=100"`
	Model    string `json:"model" validate:"max=100"`
	Year     *int   `json:"year" validate:"omitempty,gte=1950,lte=2100"`
	VIN      string `json:"vin" validate:"max=32"`
	Color    string `json:"color" validate:"max=50"`
	FuelType string `json:"fuelType" validate:"max=30"`
}

type AddNoteRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email,omitempty"`
	Mobile    string    `json:"mobile,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Country   string    `json:"country,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NoteResponse struct {
	ID        uuid.UUID  `json:"id"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ProfileResponse is the full customer profile: the canonical record plus
// every aggregated view assembled in one response.
type ProfileResponse struct {
	Customer CustomerResponse `json:"customer"`
	Vehicles []VehicleView    `json:"vehicles"`
	Services []ServiceEntry   `json:"services"`
	Leads    []LeadView       `json:"leads"`
	Invoices []InvoiceView    `json:"invoices"`
	Activity []ActivityItem   `json:"activity"`
}

// ServiceEntry is one booking in a customer's service history.
type ServiceEntry struct {
	ID            uuid.UUID `json:"id"`
	Services      []string  `json:"services"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Status        string    `json:"status"`
	TotalAmount   float64   `json:"totalAmount"`
	NumberPlate   string    `json:"numberPlate,omitempty"`
}

// VehicleView is one vehicle in the merged per-customer vehicle list.
// Source records which phase produced the base fields: "profile" for the
// customer's own vehicle records, "booking" or "invoice" for derived stubs.
type VehicleView struct {
	Plate    string         `json:"plate"`
	Make     string         `json:"make,omitempty"`
	Model    string         `json:"model,omitempty"`
	Year     *int           `json:"year,omitempty"`
	VIN      string         `json:"vin,omitempty"`
	Color    string         `json:"color,omitempty"`
	FuelType string         `json:"fuelType,omitempty"`
	Source   string         `json:"source"`
	Services []ServiceEntry `json:"services"`
}

// LeadView is one CRM lead matched to a customer.
type LeadView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvoiceView is one invoice matched to a customer.
type InvoiceView struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	VehiclePlate  string    `json:"vehiclePlate,omitempty"`
	Total         float64   `json:"total"`
	InvoiceDate   time.Time `json:"invoiceDate"`
}

// Activity type tags for the unified timeline.
const (
	ActivityTypeService = "service"
	ActivityTypeLead    = "lead"
	ActivityTypeInvoice = "invoice"
)

// ActivityItem is one entry in a customer's unified activity timeline.
type ActivityItem struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Data        interface{} `json:"data"`
}
