package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("customer not found")

const customerColumns = `id, first_name, last_name, email, mobile, address, city, state, country, status, created_at, updated_at`

// Customer is the canonical customer record. Contact fields use empty
// strings rather than NULLs so the resolver's fill-only merge can treat
// "empty" uniformly.
type Customer struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Address   string
	City      string
	State     string
	Country   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateCustomerParams struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Address   string
	City      string
	State     string
	Country   string
	Status    string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so the resolver's
// writes can run inside or outside the identity transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) Create(ctx context.Context, params CreateCustomerParams) (Customer, error) {
	return create(ctx, r.pool, params)
}

func create(ctx context.Context, db dbtx, params CreateCustomerParams) (Customer, error) {
	status := params.Status
	if status == "" {
		status = "active"
	}

	var customer Customer
	err := db.QueryRow(ctx, `
		INSERT INTO customers (first_name, last_name, email, mobile, address, city, state, country, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+customerColumns+`
	`, params.FirstName, params.LastName, params.Email, params.Mobile,
		params.Address, params.City, params.State, params.Country, status,
	).Scan(scanTargets(&customer)...)
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	var customer Customer
	err := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers WHERE id = $1
	`, id).Scan(scanTargets(&customer)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// FindByEmail returns the first customer with an exactly matching email.
// Lookup-before-create means multiple rows can share an email after a race;
// the oldest row wins so repeated resolution stays stable.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Customer, error) {
	return findByField(ctx, r.pool, "email", email)
}

// FindByMobile returns the first customer with an exactly matching mobile.
func (r *Repository) FindByMobile(ctx context.Context, mobile string) (Customer, error) {
	return findByField(ctx, r.pool, "mobile", mobile)
}

func findByField(ctx context.Context, db dbtx, column, value string) (Customer, error) {
	var customer Customer
	err := db.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers WHERE `+column+` = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, value).Scan(scanTargets(&customer)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// mergeableColumns are the contact fields the resolver may backfill.
var mergeableColumns = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"mobile":     true,
	"address":    true,
	"city":       true,
	"country":    true,
}

// UpdateContactFields applies the staged fill-only merge as a single UPDATE.
// Keys are column names restricted to the mergeable contact fields.
func (r *Repository) UpdateContactFields(ctx context.Context, id uuid.UUID, fields map[string]string) error {
	return updateContactFields(ctx, r.pool, id, fields)
}

func updateContactFields(ctx context.Context, db dbtx, id uuid.UUID, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(fields)+1)
	args := []any{id}
	for _, column := range sortedColumns(fields) {
		if !mergeableColumns[column] {
			return fmt.Errorf("column %q is not mergeable", column)
		}
		args = append(args, fields[column])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	assignments = append(assignments, "updated_at = now()")

	tag, err := db.Exec(ctx,
		"UPDATE customers SET "+strings.Join(assignments, ", ")+" WHERE id = $1",
		args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type ListCustomersParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

func (r *Repository) List(ctx context.Context, params ListCustomersParams) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if params.Status != "" {
		args = append(args, params.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+strings.ToLower(params.Search)+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(lower(first_name) LIKE $%d OR lower(last_name) LIKE $%d OR lower(email) LIKE $%d OR mobile LIKE $%d)",
			idx, idx, idx, idx))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		var customer Customer
		if err := rows.Scan(scanTargets(&customer)...); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

type UpdateCustomerParams struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Address   string
	City      string
	State     string
	Country   string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (Customer, error) {
	var customer Customer
	err := r.pool.QueryRow(ctx, `
		UPDATE customers
		SET first_name = $2, last_name = $3, email = $4, mobile = $5,
			address = $6, city = $7, state = $8, country = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns+`
	`, id, params.FirstName, params.LastName, params.Email, params.Mobile,
		params.Address, params.City, params.State, params.Country,
	).Scan(scanTargets(&customer)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET status = $2, updated_at = now() WHERE id = $1
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTargets(c *Customer) []any {
	return []any{
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Mobile,
		&c.Address, &c.City, &c.State, &c.Country, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

func sortedColumns(fields map[string]string) []string {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
