package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanRecord is a single admission decision made by an operator. It is
// persisted to the local store the moment the operator confirms the scan and
// mirrored to the remote ledger when connectivity allows.
//
// ID is client-generated at scan time and never reused; the remote insert is
// idempotent by ID, so re-mirroring after a partial failure is replay-safe.
type ScanRecord struct {
	ID           uuid.UUID
	InvitationID *uuid.UUID // nil when the token decoded but the invitation is unknown
	OperatorID   uuid.UUID
	ScannedAt    time.Time
	AdmitCount   int
	Decision     ScanDecision
	Mode         ScanMode

	// Synced is monotonic: false → true exactly once, when both remote
	// writes (scan insert + invitation update) have landed.
	Synced bool

	// Display snapshot captured at scan time so the terminal can show
	// history without the ledger being reachable.
	GuestName  string
	GuestPhone *string
	GroupSize  *int
}

// Validate checks record invariants before persistence.
func (r *ScanRecord) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "must be set")
	}
	if r.OperatorID == uuid.Nil {
		return NewValidationError("operator_id", "must be set")
	}
	if r.AdmitCount < 0 {
		return NewValidationError("admit_count", "must be non-negative")
	}
	if !r.Decision.IsValid() {
		return NewValidationError("decision", "unknown decision")
	}
	if !r.Mode.IsValid() {
		return NewValidationError("mode", "unknown mode")
	}
	return nil
}
