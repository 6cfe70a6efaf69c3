package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/btpass/backend/internal/domain"
)

// Mirror replays a locally persisted record to the ledger and marks it
// synced. Safe to call again for the same record: the remote insert is
// idempotent by id and MarkSynced tolerates repeats.
//
// The sync pass uses this for every backlog record; Confirm uses it for the
// immediate online mirror.
func (s *Service) Mirror(ctx context.Context, rec *domain.ScanRecord) error {
	if err := s.ledger.InsertScan(ctx, rec); err != nil {
		return fmt.Errorf("mirror scan %s: %w", rec.ID, err)
	}

	if rec.InvitationID != nil {
		if err := s.updateInvitation(ctx, rec); err != nil {
			return err
		}
	}

	if err := s.store.MarkSynced(ctx, rec.ID); err != nil {
		// Both remote writes landed; only the local flag is stale. The
		// next sync pass replays harmlessly.
		return fmt.Errorf("mark scan %s synced: %w", rec.ID, err)
	}
	rec.Synced = true

	return nil
}

// updateInvitation re-reads the invitation for its current count before the
// USED update. An invitation that vanished from the ledger does not block the
// sync: the scan row is already mirrored, which is what matters.
func (s *Service) updateInvitation(ctx context.Context, rec *domain.ScanRecord) error {
	invID := *rec.InvitationID

	inv, err := s.ledger.FetchInvitation(ctx, invID)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.WarnContext(ctx, "invitation gone from ledger, mirroring scan only",
			slog.String("record_id", rec.ID.String()),
			slog.String("invitation_id", invID.String()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror scan %s: fetch invitation: %w", rec.ID, err)
	}

	newCount := inv.CheckedInCount + rec.AdmitCount
	if err := s.ledger.UpdateCheckIn(ctx, invID, domain.InvitationStatusUsed, newCount); err != nil {
		return fmt.Errorf("mirror scan %s: update invitation: %w", rec.ID, err)
	}

	return nil
}
