// Package repository provides Postgres persistence for service bookings.
// Bookings keep the contact and vehicle fields they were created with; the
// customers module matches on those denormalized fields rather than a
// foreign key.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("booking not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

type Booking struct {
	ID            uuid.UUID
	CustomerName  string
	MobileNo      string
	Email         string
	VehicleBrand  string
	ModelName     string
	NumberPlate   string
	FuelType      string
	Services      []string
	ScheduledDate *time.Time
	Status        string
	TotalAmount   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Attachment struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	FileName    string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

type CreateBookingParams struct {
	CustomerName  string
	MobileNo      string
	Email         string
	VehicleBrand  string
	ModelName     string
	NumberPlate   string
	FuelType      string
	Services      []string
	ScheduledDate *time.Time
	TotalAmount   float64
}

type ListBookingsParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

const bookingColumns = `id, customer_name, mobile_no, email, vehicle_brand, model_name,
	number_plate, fuel_type, services, scheduled_date, status, total_amount,
	created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, params CreateBookingParams) (Booking, error) {
	services, err := json.Marshal(nonNil(params.Services))
	if err != nil {
		return Booking{}, fmt.Errorf("marshal services: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO booked_services (customer_name, mobile_no, email, vehicle_brand,
			model_name, number_plate, fuel_type, services, scheduled_date, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+bookingColumns+`
	`, params.CustomerName, params.MobileNo, params.Email, params.VehicleBrand,
		params.ModelName, params.NumberPlate, params.FuelType, services,
		params.ScheduledDate, params.TotalAmount)

	return scanBooking(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM booked_services WHERE id = $1
	`, id)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	return booking, nil
}

func (r *Repository) List(ctx context.Context, params ListBookingsParams) ([]Booking, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM booked_services
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR customer_name ILIKE '%' || $2 || '%'
		       OR number_plate ILIKE '%' || $2 || '%'
		       OR mobile_no ILIKE '%' || $2 || '%')
		ORDER BY scheduled_date DESC NULLS LAST, created_at DESC
		LIMIT $3 OFFSET $4
	`, params.Status, params.Search, limit, params.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByMobile returns bookings whose stored mobile exactly matches.
func (r *Repository) ListByMobile(ctx context.Context, mobile string) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM booked_services
		WHERE mobile_no = $1
		ORDER BY created_at DESC
	`, mobile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByEmail returns bookings whose stored email exactly matches.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM booked_services
		WHERE email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE booked_services SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM booked_services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) AddAttachment(ctx context.Context, bookingID uuid.UUID, fileName, objectKey, contentType string, sizeBytes int64) (Attachment, error) {
	var a Attachment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO booking_attachments (booking_id, file_name, object_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, file_name, object_key, content_type, size_bytes, created_at
	`, bookingID, fileName, objectKey, contentType, sizeBytes).Scan(
		&a.ID, &a.BookingID, &a.FileName, &a.ObjectKey, &a.ContentType, &a.SizeBytes, &a.CreatedAt)
	if err != nil {
		return Attachment{}, err
	}
	return a, nil
}

func (r *Repository) ListAttachments(ctx context.Context, bookingID uuid.UUID) ([]Attachment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, file_name, object_key, content_type, size_bytes, created_at
		FROM booking_attachments
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]Attachment, 0)
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.BookingID, &a.FileName, &a.ObjectKey, &a.ContentType, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *Repository) GetAttachment(ctx context.Context, bookingID, attachmentID uuid.UUID) (Attachment, error) {
	var a Attachment
	err := r.pool.QueryRow(ctx, `
		SELECT id, booking_id, file_name, object_key, content_type, size_bytes, created_at
		FROM booking_attachments
		WHERE id = $1 AND booking_id = $2
	`, attachmentID, bookingID).Scan(
		&a.ID, &a.BookingID, &a.FileName, &a.ObjectKey, &a.ContentType, &a.SizeBytes, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attachment{}, ErrAttachmentNotFound
		}
		return Attachment{}, err
	}
	return a, nil
}

func (r *Repository) DeleteAttachment(ctx context.Context, bookingID, attachmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM booking_attachments WHERE id = $1 AND booking_id = $2
	`, attachmentID, bookingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		b        Booking
		services []byte
	)
	err := row.Scan(&b.ID, &b.CustomerName, &b.MobileNo, &b.Email, &b.VehicleBrand,
		&b.ModelName, &b.NumberPlate, &b.FuelType, &services, &b.ScheduledDate,
		&b.Status, &b.TotalAmount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Booking{}, err
	}
	if err := json.Unmarshal(services, &b.Services); err != nil {
		return Booking{}, fmt.Errorf("unmarshal services: %w", err)
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	bookings := make([]Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func nonNil(services []string) []string {
	if services == nil {
		return []string{}
	}
	return services
}
