// Package invitation implements the invitation side of the remote ledger.
package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/btpass/backend/internal/adapter/postgres"
	"github.com/btpass/backend/internal/domain"
)

const fetchSQL = `
SELECT id, guest_name, guest_phone, group_size, status, checked_in_count, created_at
FROM invitations
WHERE id = $1`

const updateCheckInSQL = `
UPDATE invitations
SET status = $2, checked_in_count = $3
WHERE id = $1`

const createSQL = `
INSERT INTO invitations (id, guest_name, guest_phone, group_size, status, checked_in_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Repo provides invitation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new invitation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Fetch returns the current invitation snapshot.
// Returns domain.ErrNotFound when the id is unknown.
func (r *Repo) Fetch(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	var (
		inv        domain.Invitation
		guestPhone *string
		status     string
	)

	err := r.pool.QueryRow(ctx, fetchSQL, id).Scan(
		&inv.ID, &inv.GuestName, &guestPhone, &inv.GroupSize,
		&status, &inv.CheckedInCount, &inv.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "invitation", id)
	}

	inv.GuestPhone = guestPhone
	inv.Status = domain.InvitationStatus(status)

	return &inv, nil
}

// UpdateCheckIn sets status and checked-in count after an admission.
// Returns domain.ErrNotFound if 0 rows affected.
func (r *Repo) UpdateCheckIn(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error {
	tag, err := r.pool.Exec(ctx, updateCheckInSQL, id, status.String(), checkedInCount)
	if err != nil {
		return postgres.MapError(err, "invitation", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invitation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Create inserts a new invitation. Used by the issuing flow, not the scan path.
func (r *Repo) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, createSQL,
		inv.ID, inv.GuestName, inv.GuestPhone, inv.GroupSize,
		inv.Status.String(), inv.CheckedInCount, inv.CreatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "invitation", inv.ID)
	}

	return inv, nil
}
