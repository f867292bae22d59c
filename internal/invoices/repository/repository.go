// Package repository provides Postgres persistence for invoices and
// quotations. Both tables keep the contact fields they were created with;
// customer matching happens on those denormalized fields.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carmantra_backend/internal/invoices/transport"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrQuotationNotFound = errors.New("quotation not found")
	ErrDuplicateNumber   = errors.New("document number already exists")
)

type Invoice struct {
	ID            uuid.UUID
	InvoiceNumber string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	VehicleMake   string
	VehicleModel  string
	VehiclePlate  string
	LineItems     []transport.LineItem
	Subtotal      float64
	Tax           float64
	Total         float64
	InvoiceDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Quotation struct {
	ID              uuid.UUID
	QuotationNumber string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	LineItems       []transport.LineItem
	Total           float64
	ValidUntil      *time.Time
	QuoteDate       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateInvoiceParams struct {
	InvoiceNumber string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	VehicleMake   string
	VehicleModel  string
	VehiclePlate  string
	LineItems     []transport.LineItem
	Subtotal      float64
	Tax           float64
	Total         float64
	InvoiceDate   *time.Time
}

type CreateQuotationParams struct {
	QuotationNumber string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	LineItems       []transport.LineItem
	Total           float64
	ValidUntil      *time.Time
}

const invoiceColumns = `id, invoice_number, customer_name, customer_email, customer_phone,
	vehicle_make, vehicle_model, vehicle_plate, line_items, subtotal, tax, total,
	invoice_date, created_at, updated_at`

const quotationColumns = `id, quotation_number, customer_name, customer_email, customer_phone,
	line_items, total, valid_until, quote_date, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (Invoice, error) {
	lineItems, err := marshalLineItems(params.LineItems)
	if err != nil {
		return Invoice{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, customer_name, customer_email, customer_phone,
			vehicle_make, vehicle_model, vehicle_plate, line_items, subtotal, tax, total,
			invoice_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()))
		RETURNING `+invoiceColumns+`
	`, params.InvoiceNumber, params.CustomerName, params.CustomerEmail, params.CustomerPhone,
		params.VehicleMake, params.VehicleModel, params.VehiclePlate, lineItems,
		params.Subtotal, params.Tax, params.Total, params.InvoiceDate)

	invoice, err := scanInvoice(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Invoice{}, ErrDuplicateNumber
		}
		return Invoice{}, err
	}
	return invoice, nil
}

func (r *Repository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)

	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	return invoice, nil
}

func (r *Repository) ListInvoices(ctx context.Context, search string, limit, offset int) ([]Invoice, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE ($1 = '' OR invoice_number ILIKE '%' || $1 || '%'
		       OR customer_name ILIKE '%' || $1 || '%'
		       OR vehicle_plate ILIKE '%' || $1 || '%')
		ORDER BY invoice_date DESC
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// ListByCustomerEmail returns invoices whose stored customer email exactly
// matches.
func (r *Repository) ListByCustomerEmail(ctx context.Context, email string) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE customer_email = $1 ORDER BY invoice_date DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectInvoices(rows)
}

func (r *Repository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateQuotation(ctx context.Context, params CreateQuotationParams) (Quotation, error) {
	lineItems, err := marshalLineItems(params.LineItems)
	if err != nil {
		return Quotation{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO quotations (quotation_number, customer_name, customer_email,
			customer_phone, line_items, total, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+quotationColumns+`
	`, params.QuotationNumber, params.CustomerName, params.CustomerEmail,
		params.CustomerPhone, lineItems, params.Total, params.ValidUntil)

	quotation, err := scanQuotation(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Quotation{}, ErrDuplicateNumber
		}
		return Quotation{}, err
	}
	return quotation, nil
}

func (r *Repository) GetQuotationByID(ctx context.Context, id uuid.UUID) (Quotation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)

	quotation, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, ErrQuotationNotFound
		}
		return Quotation{}, err
	}
	return quotation, nil
}

func (r *Repository) ListQuotations(ctx context.Context, search string, limit, offset int) ([]Quotation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+quotationColumns+`
		FROM quotations
		WHERE ($1 = '' OR quotation_number ILIKE '%' || $1 || '%'
		       OR customer_name ILIKE '%' || $1 || '%')
		ORDER BY quote_date DESC
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotations := make([]Quotation, 0)
	for rows.Next() {
		quotation, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, quotation)
	}
	return quotations, rows.Err()
}

func (r *Repository) DeleteQuotation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotationNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var (
		inv       Invoice
		lineItems []byte
	)
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail,
		&inv.CustomerPhone, &inv.VehicleMake, &inv.VehicleModel, &inv.VehiclePlate,
		&lineItems, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.InvoiceDate,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, err
	}
	if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
		return Invoice{}, fmt.Errorf("unmarshal line items: %w", err)
	}
	return inv, nil
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var (
		q         Quotation
		lineItems []byte
	)
	err := row.Scan(&q.ID, &q.QuotationNumber, &q.CustomerName, &q.CustomerEmail,
		&q.CustomerPhone, &lineItems, &q.Total, &q.ValidUntil, &q.QuoteDate,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Quotation{}, err
	}
	if err := json.Unmarshal(lineItems, &q.LineItems); err != nil {
		return Quotation{}, fmt.Errorf("unmarshal line items: %w", err)
	}
	return q, nil
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	invoices := make([]Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func marshalLineItems(items []transport.LineItem) ([]byte, error) {
	if items == nil {
		items = []transport.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	return data, nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
