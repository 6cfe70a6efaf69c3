// Package operator implements usher account lookup at the remote ledger.
// Used once at session start, outside the hot scan path.
package operator

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/btpass/backend/internal/adapter/postgres"
	"github.com/btpass/backend/internal/domain"
)

const lookupByPhoneSQL = `
SELECT id, name, phone, role, password_hash, created_at
FROM operators
WHERE phone = $1`

const lookupByIDSQL = `
SELECT id, name, phone, role, password_hash, created_at
FROM operators
WHERE id = $1`

// Repo provides operator lookup backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new operator repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// LookupByPhone returns the operator registered under the given phone.
// Returns domain.ErrNotFound when unknown.
func (r *Repo) LookupByPhone(ctx context.Context, phone string) (*domain.Operator, error) {
	var (
		op   domain.Operator
		role string
	)

	err := r.pool.QueryRow(ctx, lookupByPhoneSQL, phone).Scan(
		&op.ID, &op.Name, &op.Phone, &role, &op.PasswordHash, &op.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "operator", uuid.Nil)
	}

	op.Role = domain.OperatorRole(role)
	return &op, nil
}

// LookupByID returns the operator with the given id.
func (r *Repo) LookupByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	var (
		op   domain.Operator
		role string
	)

	err := r.pool.QueryRow(ctx, lookupByIDSQL, id).Scan(
		&op.ID, &op.Name, &op.Phone, &role, &op.PasswordHash, &op.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "operator", id)
	}

	op.Role = domain.OperatorRole(role)
	return &op, nil
}
