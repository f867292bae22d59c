// Package service implements booking management and attachment handling.
package service

import (
	"context"
	"errors"
	"strings"

	"carmantra_backend/internal/bookings/repository"
	"carmantra_backend/internal/bookings/transport"
	"carmantra_backend/internal/events"
	"carmantra_backend/internal/storage"
	"carmantra_backend/platform/apperr"
	"carmantra_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	repo        *repository.Repository
	bus         events.Bus
	store       storage.ObjectStore
	bucket      string
	phoneRegion string
}

// New creates the booking service. store may be nil when object storage is
// not configured; attachment operations then fail with a config error.
func New(repo *repository.Repository, bus events.Bus, store storage.ObjectStore, bucket, phoneRegion string) *Service {
	return &Service{repo: repo, bus: bus, store: store, bucket: bucket, phoneRegion: phoneRegion}
}

func (s *Service) Create(ctx context.Context, req transport.CreateBookingRequest) (transport.BookingResponse, error) {
	// Mobiles are stored in E.164 so the exact-equality lookups the
	// customer views run stay in step with the resolver's normalization.
	params := repository.CreateBookingParams{
		CustomerName: strings.TrimSpace(req.CustomerName),
		MobileNo:     phone.NormalizeE164(req.MobileNo, s.phoneRegion),
		Email:        strings.TrimSpace(req.Email),
		VehicleBrand: req.VehicleBrand,
		ModelName:    req.ModelName,
		NumberPlate:  strings.TrimSpace(req.NumberPlate),
		FuelType:     req.FuelType,
		Services:     req.Services,
		TotalAmount:  req.TotalAmount,
	}
	if !req.ScheduledDate.IsZero() {
		scheduled := req.ScheduledDate.Time
		params.ScheduledDate = &scheduled
	}

	booking, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.BookingResponse{}, err
	}

	firstName, lastName := splitName(booking.CustomerName)
	s.bus.Publish(ctx, events.BookingCreated{
		BaseEvent: events.NewBaseEvent(),
		BookingID: booking.ID,
		Contact: events.ContactFragment{
			FirstName: firstName,
			LastName:  lastName,
			Email:     booking.Email,
			Mobile:    booking.MobileNo,
		},
		ServiceNames:  booking.Services,
		ScheduledDate: booking.ScheduledDate,
	})

	return toResponse(booking), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.BookingResponse{}, apperr.NotFound("booking not found")
		}
		return transport.BookingResponse{}, err
	}
	return toResponse(booking), nil
}

func (s *Service) List(ctx context.Context, status, search string, limit, offset int) ([]transport.BookingResponse, error) {
	bookings, err := s.repo.List(ctx, repository.ListBookingsParams{
		Status: status,
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]transport.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		responses = append(responses, toResponse(booking))
	}
	return responses, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("booking not found")
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("booking not found")
		}
		return err
	}
	return nil
}

// RequestUpload reserves an attachment slot: it records the attachment row
// and returns a presigned PUT URL the client uploads the file to directly.
func (s *Service) RequestUpload(ctx context.Context, bookingID uuid.UUID, req transport.RequestUploadRequest) (transport.UploadSlotResponse, error) {
	if s.store == nil {
		return transport.UploadSlotResponse{}, apperr.BadRequest("attachment storage is not configured")
	}

	if _, err := s.repo.GetByID(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UploadSlotResponse{}, apperr.NotFound("booking not found")
		}
		return transport.UploadSlotResponse{}, err
	}

	slot, err := s.store.GenerateUploadURL(ctx, s.bucket, "bookings/"+bookingID.String(), req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.UploadSlotResponse{}, apperr.BadRequest(err.Error())
	}

	attachment, err := s.repo.AddAttachment(ctx, bookingID, req.FileName, slot.FileKey, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.UploadSlotResponse{}, err
	}

	return transport.UploadSlotResponse{
		AttachmentID: attachment.ID,
		UploadURL:    slot.URL,
		FileKey:      slot.FileKey,
		ExpiresAt:    slot.ExpiresAt,
	}, nil
}

// ListAttachments returns the booking's attachments with fresh download URLs.
func (s *Service) ListAttachments(ctx context.Context, bookingID uuid.UUID) ([]transport.AttachmentResponse, error) {
	attachments, err := s.repo.ListAttachments(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		resp := transport.AttachmentResponse{
			ID:          attachment.ID,
			FileName:    attachment.FileName,
			ContentType: attachment.ContentType,
			SizeBytes:   attachment.SizeBytes,
			CreatedAt:   attachment.CreatedAt,
		}
		if s.store != nil {
			if slot, err := s.store.GenerateDownloadURL(ctx, s.bucket, attachment.ObjectKey); err == nil {
				resp.DownloadURL = slot.URL
			}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) DeleteAttachment(ctx context.Context, bookingID, attachmentID uuid.UUID) error {
	attachment, err := s.repo.GetAttachment(ctx, bookingID, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			return apperr.NotFound("attachment not found")
		}
		return err
	}

	if s.store != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, attachment.ObjectKey); err != nil {
			return err
		}
	}
	return s.repo.DeleteAttachment(ctx, bookingID, attachmentID)
}

// splitName splits a free-form customer name into first and last name on
// the first space.
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

func toResponse(booking repository.Booking) transport.BookingResponse {
	return transport.BookingResponse{
		ID:            booking.ID,
		CustomerName:  booking.CustomerName,
		MobileNo:      booking.MobileNo,
		Email:         booking.Email,
		VehicleBrand:  booking.VehicleBrand,
		ModelName:     booking.ModelName,
		NumberPlate:   booking.NumberPlate,
		FuelType:      booking.FuelType,
		Services:      booking.Services,
		ScheduledDate: booking.ScheduledDate,
		Status:        booking.Status,
		TotalAmount:   booking.TotalAmount,
		CreatedAt:     booking.CreatedAt,
		UpdatedAt:     booking.UpdatedAt,
	}
}
