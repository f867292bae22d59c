// Package repository provides Postgres persistence for CRM leads.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Source    string
	Status    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateLeadParams struct {
	Name   string
	Email  string
	Phone  string
	Source string
	Notes  string
}

type UpdateLeadParams struct {
	Name   string
	Email  string
	Phone  string
	Source string
	Notes  string
}

type ListLeadsParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

const leadColumns = `id, name, email, phone, source, status, notes, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO crm_leads (name, email, phone, source, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+leadColumns+`
	`, params.Name, params.Email, params.Phone, params.Source, params.Notes)

	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM crm_leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM crm_leads
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%'
		       OR email ILIKE '%' || $2 || '%'
		       OR phone ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, params.Status, params.Search, limit, params.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListByEmail returns leads whose stored email exactly matches.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM crm_leads WHERE email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListByPhone returns leads whose stored phone exactly matches.
func (r *Repository) ListByPhone(ctx context.Context, phone string) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM crm_leads WHERE phone = $1 ORDER BY created_at DESC
	`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE crm_leads
		SET name = $2, email = $3, phone = $4, source = $5, notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, params.Name, params.Email, params.Phone, params.Source, params.Notes)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE crm_leads SET status = $2, updated_at = now() WHERE id = $1
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM crm_leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.Status,
		&l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
