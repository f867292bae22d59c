// Package transport defines the request and response DTOs for the bookings module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	CustomerName  string   `json:"customerName" validate:"required,max=200"`
	MobileNo      string   `json:"mobileNo" validate:"max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	VehicleBrand  string   `json:"vehicleBrand" validate:"max=100"`
	ModelName     string   `json:"modelName" validate:"max=100"`
	NumberPlate   string   `json:"numberPlate" validate:"max=20"`
	FuelType      string   `json:"fuelType" validate:"max=30"`
	Services      []string `json:"services" validate:"required,min=1,dive,max=200"`
	ScheduledDate FlexTime `json:"scheduledDate"`
	TotalAmount   float64  `json:"totalAmount" validate:"gte=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled in_progress completed cancelled"`
}

type BookingResponse struct {
	ID            uuid.UUID  `json:"id"`
	CustomerName  string     `json:"customerName"`
	MobileNo      string     `json:"mobileNo,omitempty"`
	Email         string     `json:"email,omitempty"`
	VehicleBrand  string     `json:"vehicleBrand,omitempty"`
	ModelName     string     `json:"modelName,omitempty"`
	NumberPlate   string     `json:"numberPlate,omitempty"`
	FuelType      string     `json:"fuelType,omitempty"`
	Services      []string   `json:"services"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	Status        string     `json:"status"`
	TotalAmount   float64    `json:"totalAmount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type RequestUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type UploadSlotResponse struct {
	AttachmentID uuid.UUID `json:"attachmentId"`
	UploadURL    string    `json:"uploadUrl"`
	FileKey      string    `json:"fileKey"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType,omitempty"`
	SizeBytes   int64     `json:"sizeBytes"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
