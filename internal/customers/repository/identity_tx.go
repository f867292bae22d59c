package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdentityStore is the subset of customer operations the identity resolver
// needs. It is implemented by Repository (pool-backed, best-effort mode)
// and by the transaction-scoped store WithIdentityLock hands out.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (Customer, error)
	FindByMobile(ctx context.Context, mobile string) (Customer, error)
	Create(ctx context.Context, params CreateCustomerParams) (Customer, error)
	UpdateContactFields(ctx context.Context, id uuid.UUID, fields map[string]string) error
}

// WithIdentityLock runs fn inside a transaction holding an advisory lock on
// the identity key. Two concurrent resolutions of the same key serialize on
// the lock, which closes the lookup-then-create race.
func (r *Repository) WithIdentityLock(ctx context.Context, key string, fn func(store IdentityStore) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return err
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type txStore struct {
	tx pgx.Tx
}

func (s *txStore) FindByEmail(ctx context.Context, email string) (Customer, error) {
	return findByField(ctx, s.tx, "email", email)
}

func (s *txStore) FindByMobile(ctx context.Context, mobile string) (Customer, error) {
	return findByField(ctx, s.tx, "mobile", mobile)
}

func (s *txStore) Create(ctx context.Context, params CreateCustomerParams) (Customer, error) {
	return create(ctx, s.tx, params)
}

func (s *txStore) UpdateContactFields(ctx context.Context, id uuid.UUID, fields map[string]string) error {
	return updateContactFields(ctx, s.tx, id, fields)
}
