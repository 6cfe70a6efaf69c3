package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
	"github.com/btpass/backend/pkg/ctxutil"
)

// BeginResult is what the terminal shows the operator before they confirm.
type BeginResult struct {
	AttemptID uuid.UUID
	Token     domain.InvitationToken

	// Snapshot is nil when the ledger was not consulted (offline) or did
	// not answer. The token's guest name is the display fallback.
	Snapshot *domain.InvitationSnapshot

	// AlreadyUsed prompts the operator for an explicit re-admission
	// confirmation. It never blocks the admission by itself.
	AlreadyUsed bool

	// Online is the connectivity state captured for this attempt. The
	// eventual record carries this mode even if the network changes
	// between Begin and Confirm.
	Online bool
}

// Begin decodes raw QR text and, when online, looks the invitation up at the
// ledger. It parks the attempt until Confirm or Cancel resolves it.
//
// Undecodable input returns domain.ErrInvalidToken before any state changes.
// A second Begin while an attempt is parked returns ErrAttemptPending,
// unless that attempt has sat unresolved past the TTL, in which case it is
// discarded and the new scan proceeds.
func (s *Service) Begin(ctx context.Context, rawText string) (*BeginResult, error) {
	if _, ok := ctxutil.OperatorIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}

	tok := s.codec.Decode(rawText)
	if tok == nil {
		return nil, domain.ErrInvalidToken
	}

	now := time.Now().UTC()

	s.mu.Lock()
	if prev := s.pending; prev != nil {
		if now.Sub(prev.startedAt) < s.attemptTTL {
			s.mu.Unlock()
			return nil, ErrAttemptPending
		}
		// The attempt was never confirmed or cancelled. Discard it so an
		// abandoned scan cannot block the lane indefinitely.
		s.log.WarnContext(ctx, "discarding stale scan attempt",
			slog.String("attempt_id", prev.id.String()),
			slog.String("invitation_id", prev.token.InvitationID.String()),
		)
		s.pending = nil
	}
	// Park a placeholder so concurrent Begins are rejected while we do the
	// remote lookup outside the lock.
	att := &attempt{id: uuid.New(), token: *tok, startedAt: now}
	s.pending = att
	s.mu.Unlock()

	att.online = s.network.Online()

	var snapshot *domain.InvitationSnapshot
	if att.online {
		inv, err := s.ledger.FetchInvitation(ctx, tok.InvitationID)
		switch {
		case err == nil:
			snap := inv.Snapshot()
			snapshot = &snap
		case errors.Is(err, domain.ErrNotFound):
			// A decoded token pointing at nothing is a real rejection,
			// not a connectivity problem. Clear the attempt.
			s.clearPending(att.id)
			return nil, err
		default:
			// The ledger did not answer. Fall through to the offline
			// decision path with whatever the token carries.
			s.log.WarnContext(ctx, "invitation lookup failed, degrading to offline",
				slog.String("invitation_id", tok.InvitationID.String()),
				slog.String("error", err.Error()),
			)
			att.online = false
		}
	}
	att.snapshot = snapshot

	res := &BeginResult{
		AttemptID: att.id,
		Token:     *tok,
		Snapshot:  snapshot,
		Online:    att.online,
	}
	if snapshot != nil && snapshot.Status == domain.InvitationStatusUsed {
		res.AlreadyUsed = true
	}

	s.log.InfoContext(ctx, "scan attempt started",
		slog.String("attempt_id", att.id.String()),
		slog.String("invitation_id", tok.InvitationID.String()),
		slog.Bool("online", att.online),
		slog.Bool("already_used", res.AlreadyUsed),
	)

	return res, nil
}

// clearPending drops the parked attempt if it still matches id.
func (s *Service) clearPending(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.pending.id == id {
		s.pending = nil
	}
}

// takePending atomically claims the parked attempt matching id.
func (s *Service) takePending(id uuid.UUID) (*attempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.pending.id != id {
		return nil, false
	}
	att := s.pending
	s.pending = nil
	return att, true
}
