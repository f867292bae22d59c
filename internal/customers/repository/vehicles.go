package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// Vehicle is a customer-owned vehicle record. These rows are authoritative
// for make/model/year/vin/color; the aggregator layers booking- and
// invoice-derived stubs on top of them.
type Vehicle struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Plate      string
	Make       string
	Model      string
	Year       *int
	VIN        string
	Color      string
	FuelType   string
	CreatedAt  time.Time
}

type CreateVehicleParams struct {
	CustomerID uuid.UUID
	Plate      string
	Make       string
	Model      string
	Year       *int
	VIN        string
	Color      string
	FuelType   string
}

func (r *Repository) ListVehicles(ctx context.Context, customerID uuid.UUID) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, plate, make, model, year, vin, color, fuel_type, created_at
		FROM customer_vehicles
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]Vehicle, 0)
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.VIN, &v.Color, &v.FuelType, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

func (r *Repository) AddVehicle(ctx context.Context, params CreateVehicleParams) (Vehicle, error) {
	var v Vehicle
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customer_vehicles (customer_id, plate, make, model, year, vin, color, fuel_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, customer_id, plate, make, model, year, vin, color, fuel_type, created_at
	`, params.CustomerID, params.Plate, params.Make, params.Model, params.Year, params.VIN, params.Color, params.FuelType,
	).Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.VIN, &v.Color, &v.FuelType, &v.CreatedAt)
	if err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (r *Repository) DeleteVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM customer_vehicles WHERE id = $1 AND customer_id = $2
	`, vehicleID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// Note is a freeform annotation an admin leaves on a customer.
type Note struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	AuthorID   *uuid.UUID
	Body       string
	CreatedAt  time.Time
}

func (r *Repository) ListNotes(ctx context.Context, customerID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, author_id, body, created_at
		FROM customer_notes
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.CustomerID, &note.AuthorID, &note.Body, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

func (r *Repository) AddNote(ctx context.Context, customerID uuid.UUID, authorID *uuid.UUID, body string) (Note, error) {
	var note Note
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customer_notes (customer_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, customer_id, author_id, body, created_at
	`, customerID, authorID, body).Scan(&note.ID, &note.CustomerID, &note.AuthorID, &note.Body, &note.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, err
	}
	return note, nil
}
