// Package scan implements the check-in flow: decode a scanned QR payload,
// look the invitation up when the ledger is reachable, and record the
// operator's admission decision locally before anything touches the network.
package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
)

// ErrAttemptPending is returned when a decode arrives while a previous
// attempt on the same terminal is still waiting for operator confirmation.
// Camera libraries fire the success callback more than once per physical
// scan; dropping the extras here keeps one scan to one record.
var ErrAttemptPending = errors.New("scan attempt awaiting confirmation")

// defaultAttemptTTL bounds how long an unconfirmed attempt can block the
// terminal. An operator who walks away mid-scan must not wedge the lane;
// the next Begin past the TTL discards the stale attempt and starts fresh.
const defaultAttemptTTL = 2 * time.Minute

type tokenDecoder interface {
	Decode(raw string) *domain.InvitationToken
}

type localStore interface {
	Put(ctx context.Context, rec *domain.ScanRecord) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
}

type remoteLedger interface {
	FetchInvitation(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	InsertScan(ctx context.Context, rec *domain.ScanRecord) error
	UpdateCheckIn(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, checkedInCount int) error
}

type connectivity interface {
	Online() bool
}

// Service drives a scan attempt from raw QR text to a persisted record.
type Service struct {
	codec   tokenDecoder
	store   localStore
	ledger  remoteLedger
	network connectivity
	log     *slog.Logger

	attemptTTL time.Duration

	mu      sync.Mutex
	pending *attempt
}

// attempt is the decoded-but-unconfirmed state between Begin and Confirm.
type attempt struct {
	id        uuid.UUID
	token     domain.InvitationToken
	snapshot  *domain.InvitationSnapshot
	online    bool
	startedAt time.Time
}

// NewService creates the scan service.
func NewService(
	log *slog.Logger,
	codec tokenDecoder,
	store localStore,
	ledger remoteLedger,
	network connectivity,
) *Service {
	return &Service{
		codec:      codec,
		store:      store,
		ledger:     ledger,
		network:    network,
		log:        log.With("service", "scan"),
		attemptTTL: defaultAttemptTTL,
	}
}
