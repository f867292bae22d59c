// Package transport defines the request and response DTOs for the invoices module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one billable line on an invoice or quotation.
type LineItem struct {
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber string     `json:"invoiceNumber" validate:"required,max=50"`
	CustomerName  string     `json:"customerName" validate:"required,max=200"`
	CustomerEmail string     `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone string     `json:"customerPhone" validate:"max=20"`
	VehicleMake   string     `json:"vehicleMake" validate:"max=100"`
	VehicleModel  string     `json:"vehicleModel" validate:"max=100"`
	VehiclePlate  string     `json:"vehiclePlate" validate:"max=20"`
	LineItems     []LineItem `json:"lineItems" validate:"required,min=1,dive"`
	Subtotal      float64    `json:"subtotal" validate:"gte=0"`
	Tax           float64    `json:"tax" validate:"gte=0"`
	Total         float64    `json:"total" validate:"gte=0"`
	InvoiceDate   *time.Time `json:"invoiceDate"`
}

type CreateQuotationRequest struct {
	QuotationNumber string     `json:"quotationNumber" validate:"required,max=50"`
	CustomerName    string     `json:"customerName" validate:"required,max=200"`
	CustomerEmail   string     `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string     `json:"customerPhone" validate:"max=20"`
	LineItems       []LineItem `json:"lineItems" validate:"required,min=1,dive"`
	Total           float64    `json:"total" validate:"gte=0"`
	ValidUntil      *time.Time `json:"validUntil"`
}

type InvoiceResponse struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	VehicleMake   string     `json:"vehicleMake,omitempty"`
	VehicleModel  string     `json:"vehicleModel,omitempty"`
	VehiclePlate  string     `json:"vehiclePlate,omitempty"`
	LineItems     []LineItem `json:"lineItems"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	InvoiceDate   time.Time  `json:"invoiceDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type QuotationResponse struct {
	ID              uuid.UUID  `json:"id"`
	QuotationNumber string     `json:"quotationNumber"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail,omitempty"`
	CustomerPhone   string     `json:"customerPhone,omitempty"`
	LineItems       []LineItem `json:"lineItems"`
	Total           float64    `json:"total"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	QuoteDate       time.Time  `json:"quoteDate"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
