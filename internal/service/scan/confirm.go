package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
	"github.com/btpass/backend/pkg/ctxutil"
)

// ConfirmResult reports the outcome of a confirmed admission.
type ConfirmResult struct {
	Record *domain.ScanRecord

	// PendingSync is true when the record is safe locally but its remote
	// mirror has not happened yet.
	PendingSync bool
}

// Confirm finalizes the parked attempt as an admission. The record is written
// to the local store first; only then is a remote mirror attempted, and a
// mirror failure never fails the admission.
//
// Returns domain.ErrNotFound when no attempt with this id is parked, and
// domain.ErrStoreUnavailable when the local write itself failed.
func (s *Service) Confirm(ctx context.Context, attemptID uuid.UUID) (*ConfirmResult, error) {
	operatorID, ok := ctxutil.OperatorIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	att, ok := s.takePending(attemptID)
	if !ok {
		return nil, fmt.Errorf("scan attempt %s: %w", attemptID, domain.ErrNotFound)
	}

	rec := buildRecord(att, operatorID)

	if err := s.store.Put(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "local persist failed",
			slog.String("record_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreUnavailable, err)
	}

	if att.online {
		if err := s.Mirror(ctx, rec); err != nil {
			// The admission already stands locally. Leave the record in
			// the backlog and let the sync pass drain it later.
			s.log.WarnContext(ctx, "remote mirror failed, record queued for sync",
				slog.String("record_id", rec.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.log.InfoContext(ctx, "admission recorded",
		slog.String("record_id", rec.ID.String()),
		slog.String("operator_id", operatorID.String()),
		slog.Int("admit_count", rec.AdmitCount),
		slog.String("mode", rec.Mode.String()),
		slog.Bool("synced", rec.Synced),
	)

	return &ConfirmResult{Record: rec, PendingSync: !rec.Synced}, nil
}

// Cancel discards the parked attempt without recording anything.
// Cancelling an unknown or already resolved attempt is a no-op.
func (s *Service) Cancel(ctx context.Context, attemptID uuid.UUID) {
	if att, ok := s.takePending(attemptID); ok {
		s.log.InfoContext(ctx, "scan attempt cancelled",
			slog.String("attempt_id", att.id.String()),
			slog.String("invitation_id", att.token.InvitationID.String()),
		)
	}
}

// buildRecord turns a resolved attempt into the record to persist. Snapshot
// fields win over token fields when the ledger answered; otherwise the token
// is all we know and the party admits as a single guest.
func buildRecord(att *attempt, operatorID uuid.UUID) *domain.ScanRecord {
	rec := &domain.ScanRecord{
		ID:         uuid.New(),
		OperatorID: operatorID,
		ScannedAt:  time.Now().UTC(),
		AdmitCount: 1,
		Decision:   domain.ScanDecisionAdmit,
		Mode:       domain.ScanModeOffline,
		GuestName:  att.token.GuestName,
	}

	invID := att.token.InvitationID
	rec.InvitationID = &invID

	if att.online {
		rec.Mode = domain.ScanModeOnline
	}
	if snap := att.snapshot; snap != nil {
		rec.GuestName = snap.GuestName
		rec.GuestPhone = snap.GuestPhone
		rec.AdmitCount = snap.GroupSize
		gs := snap.GroupSize
		rec.GroupSize = &gs
	}

	return rec
}
