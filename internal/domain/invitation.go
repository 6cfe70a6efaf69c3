package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvitationToken is the transient payload decoded from a QR code. It is
// never persisted as-is; the reconciler uses it only to find the invitation.
//
// IssuedAt is informational. No expiry is enforced anywhere; callers that
// ever want a freshness policy apply it themselves.
type InvitationToken struct {
	InvitationID uuid.UUID
	GuestName    string
	IssuedAt     time.Time
}

// Invitation is the ledger's record of a single invited party.
type Invitation struct {
	ID             uuid.UUID
	GuestName      string
	GuestPhone     *string
	GroupSize      int
	Status         InvitationStatus
	CheckedInCount int
	CreatedAt      time.Time
}

// Snapshot reduces the invitation to what the reconciler needs at
// decision time.
func (i *Invitation) Snapshot() InvitationSnapshot {
	return InvitationSnapshot{
		ID:             i.ID,
		GuestName:      i.GuestName,
		GuestPhone:     i.GuestPhone,
		GroupSize:      i.GroupSize,
		Status:         i.Status,
		CheckedInCount: i.CheckedInCount,
	}
}

// InvitationSnapshot is the advisory view of an invitation fetched from the
// ledger during a scan. Advisory because a USED status does not block a new
// admission: it only prompts the operator to confirm.
type InvitationSnapshot struct {
	ID             uuid.UUID
	GuestName      string
	GuestPhone     *string
	GroupSize      int
	Status         InvitationStatus
	CheckedInCount int
}
