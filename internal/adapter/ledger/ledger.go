// Package ledger assembles the postgres repositories into the single remote
// ledger collaborator the services depend on. Every call carries its own
// deadline so a dead network fails a scan in bounded time instead of hanging
// the terminal.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/btpass/backend/internal/adapter/postgres/invitation"
	"github.com/btpass/backend/internal/adapter/postgres/operator"
	"github.com/btpass/backend/internal/adapter/postgres/scanlog"
	"github.com/btpass/backend/internal/config"
	"github.com/btpass/backend/internal/domain"
)

// Ledger is the terminal's view of the remote system of record. All methods
// are best-effort from the caller's perspective: the scan path treats any
// error as "ledger unreachable" and degrades to offline behaviour.
type Ledger struct {
	pool        *pgxpool.Pool
	invitations *invitation.Repo
	scans       *scanlog.Repo
	operators   *operator.Repo
	callTimeout time.Duration
}

// New wires the repositories over a shared pool.
func New(pool *pgxpool.Pool, cfg config.LedgerConfig) *Ledger {
	return &Ledger{
		pool:        pool,
		invitations: invitation.New(pool),
		scans:       scanlog.New(pool),
		operators:   operator.New(pool),
		callTimeout: cfg.CallTimeout,
	}
}

func (l *Ledger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, l.callTimeout)
}

// FetchInvitation returns the current invitation state.
func (l *Ledger) FetchInvitation(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.invitations.Fetch(ctx, id)
}

// UpdateCheckIn marks the invitation USED and bumps its checked-in count.
func (l *Ledger) UpdateCheckIn(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.invitations.UpdateCheckIn(ctx, id, status, checkedInCount)
}

// CreateInvitation inserts a new invitation. Issuing flow only.
func (l *Ledger) CreateInvitation(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.invitations.Create(ctx, inv)
}

// InsertScan mirrors a locally persisted scan record. Idempotent by record id.
func (l *Ledger) InsertScan(ctx context.Context, rec *domain.ScanRecord) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.scans.Insert(ctx, rec)
}

// ListScans returns mirrored scan history.
func (l *Ledger) ListScans(ctx context.Context, f scanlog.Filter) ([]*domain.ScanRecord, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.scans.List(ctx, f)
}

// LookupOperatorByPhone returns the operator account for a login attempt.
func (l *Ledger) LookupOperatorByPhone(ctx context.Context, phone string) (*domain.Operator, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.operators.LookupByPhone(ctx, phone)
}

// LookupOperatorByID returns the operator account behind a session token.
func (l *Ledger) LookupOperatorByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.operators.LookupByID(ctx, id)
}

// Ping reports whether the ledger answers at all. Used by the health endpoint.
func (l *Ledger) Ping(ctx context.Context) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	return l.pool.Ping(ctx)
}
