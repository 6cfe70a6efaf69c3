// Package sync drains the local backlog of unsynced scan records to the
// remote ledger once connectivity returns.
package sync

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/btpass/backend/internal/domain"
)

type backlogStore interface {
	QueryUnsynced(ctx context.Context) ([]*domain.ScanRecord, error)
	CountUnsynced(ctx context.Context) (int, error)
}

type mirrorer interface {
	Mirror(ctx context.Context, rec *domain.ScanRecord) error
}

// Service owns the exclusive sync pass. At most one pass runs at a time:
// triggers that arrive mid-pass are dropped, not queued, because the running
// pass already reads the backlog it would have drained.
type Service struct {
	store    backlogStore
	mirror   mirrorer
	log      *slog.Logger
	inFlight atomic.Bool
}

// NewService creates the sync service.
func NewService(log *slog.Logger, store backlogStore, mirror mirrorer) *Service {
	return &Service{
		store:  store,
		mirror: mirror,
		log:    log.With("service", "sync"),
	}
}
