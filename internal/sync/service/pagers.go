package service

import (
	"context"
	"strings"

	"carmantra_backend/internal/customers/resolver"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceRecord is one source row reduced to the id used for cursoring and
// the contact fragment the resolver consumes.
type SourceRecord struct {
	ID       uuid.UUID
	Fragment resolver.Fragment
}

// Pager walks one source table in id order, a batch at a time. A nil
// cursor starts from the beginning; passing the last returned id resumes
// after it.
type Pager interface {
	Source() string
	Page(ctx context.Context, after *uuid.UUID, limit int) ([]SourceRecord, error)
}

// sqlPager pages a source table with keyset pagination on the primary key.
// UUID ordering is arbitrary but stable, which is all resumability needs.
type sqlPager struct {
	pool   *pgxpool.Pool
	source string
	query  string
}

func (p *sqlPager) Source() string { return p.source }

func (p *sqlPager) Page(ctx context.Context, after *uuid.UUID, limit int) ([]SourceRecord, error) {
	rows, err := p.pool.Query(ctx, p.query, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

// NewPagers returns the source pagers in the fixed order a sync run walks
// them: bookings, leads, invoices, quotations.
func NewPagers(pool *pgxpool.Pool) []Pager {
	return []Pager{
		&sqlPager{pool: pool, source: "bookings", query: `
			SELECT id, customer_name, email, mobile_no
			FROM booked_services
			WHERE $1::uuid IS NULL OR id > $1
			ORDER BY id
			LIMIT $2`},
		&sqlPager{pool: pool, source: "leads", query: `
			SELECT id, name, email, phone
			FROM crm_leads
			WHERE $1::uuid IS NULL OR id > $1
			ORDER BY id
			LIMIT $2`},
		&sqlPager{pool: pool, source: "invoices", query: `
			SELECT id, customer_name, customer_email, customer_phone
			FROM invoices
			WHERE $1::uuid IS NULL OR id > $1
			ORDER BY id
			LIMIT $2`},
		&sqlPager{pool: pool, source: "quotations", query: `
			SELECT id, customer_name, customer_email, customer_phone
			FROM quotations
			WHERE $1::uuid IS NULL OR id > $1
			ORDER BY id
			LIMIT $2`},
	}
}

func collectRecords(rows pgx.Rows) ([]SourceRecord, error) {
	records := make([]SourceRecord, 0)
	for rows.Next() {
		var (
			id            uuid.UUID
			name          string
			email, mobile string
		)
		if err := rows.Scan(&id, &name, &email, &mobile); err != nil {
			return nil, err
		}
		firstName, lastName := splitName(name)
		records = append(records, SourceRecord{
			ID: id,
			Fragment: resolver.Fragment{
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				Mobile:    mobile,
			},
		})
	}
	return records, rows.Err()
}

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
