package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
)

const putScanSQL = `
INSERT INTO scan_records
    (id, invitation_id, operator_id, scanned_at_ms, admit_count, decision, mode, synced, guest_name, guest_phone, group_size)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    synced = MAX(synced, excluded.synced)`

const markSyncedSQL = `UPDATE scan_records SET synced = 1 WHERE id = ?`

const countUnsyncedSQL = `SELECT count(*) FROM scan_records WHERE synced = 0`

const deleteSyncedSQL = `DELETE FROM scan_records WHERE synced = 1`

// scanColumns is the column list every read shares.
var scanColumns = []string{
	"id", "invitation_id", "operator_id", "scanned_at_ms", "admit_count",
	"decision", "mode", "synced", "guest_name", "guest_phone", "group_size",
}

// Filter narrows List results.
type Filter struct {
	// Synced filters by sync status; nil returns everything.
	Synced *bool

	// OperatorID filters by the operator that recorded the scan.
	OperatorID *uuid.UUID

	// Limit caps the result; 0 means no cap.
	Limit int
}

// Put upserts a record by id. The synced flag only ever moves false to
// true; re-putting an already-mirrored record cannot un-sync it.
func (s *Store) Put(ctx context.Context, rec *domain.ScanRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	var invitationID *string
	if rec.InvitationID != nil {
		v := rec.InvitationID.String()
		invitationID = &v
	}

	_, err := s.db.ExecContext(ctx, putScanSQL,
		rec.ID.String(),
		invitationID,
		rec.OperatorID.String(),
		rec.ScannedAt.UTC().UnixMilli(),
		rec.AdmitCount,
		rec.Decision.String(),
		rec.Mode.String(),
		boolToInt(rec.Synced),
		rec.GuestName,
		rec.GuestPhone,
		rec.GroupSize,
	)
	if err != nil {
		return fmt.Errorf("put scan_record %s: %w", rec.ID, err)
	}

	return nil
}

// QueryUnsynced returns the backlog: all records with synced=false, in
// unspecified order.
func (s *Store) QueryUnsynced(ctx context.Context) ([]*domain.ScanRecord, error) {
	f := false
	return s.List(ctx, Filter{Synced: &f})
}

// QueryAll returns every record, newest first.
func (s *Store) QueryAll(ctx context.Context) ([]*domain.ScanRecord, error) {
	return s.List(ctx, Filter{})
}

// QueryRecent returns the newest records up to limit; 0 means all.
func (s *Store) QueryRecent(ctx context.Context, limit int) ([]*domain.ScanRecord, error) {
	return s.List(ctx, Filter{Limit: limit})
}

// List returns records matching the filter, ordered by scanned_at_ms DESC.
func (s *Store) List(ctx context.Context, f Filter) ([]*domain.ScanRecord, error) {
	qb := sq.Select(scanColumns...).
		From("scan_records").
		OrderBy("scanned_at_ms DESC")

	if f.Synced != nil {
		qb = qb.Where(sq.Eq{"synced": boolToInt(*f.Synced)})
	}
	if f.OperatorID != nil {
		qb = qb.Where(sq.Eq{"operator_id": f.OperatorID.String()})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scan_records query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scan_records: %w", err)
	}
	defer rows.Close()

	records := []*domain.ScanRecord{}
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan_records: %w", err)
	}

	return records, nil
}

// MarkSynced flips synced to true. Idempotent: marking an already-synced or
// unknown id is a no-op success, so replayed sync completions are harmless.
func (s *Store) MarkSynced(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, markSyncedSQL, id.String()); err != nil {
		return fmt.Errorf("mark scan_record %s synced: %w", id, err)
	}
	return nil
}

// CountUnsynced returns the pending-sync count shown on the terminal.
func (s *Store) CountUnsynced(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countUnsyncedSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unsynced scan_records: %w", err)
	}
	return n, nil
}

// DeleteSynced removes mirrored records. Housekeeping only; core
// correctness never depends on it.
func (s *Store) DeleteSynced(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteSyncedSQL)
	if err != nil {
		return 0, fmt.Errorf("delete synced scan_records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete synced scan_records: rows affected: %w", err)
	}
	return n, nil
}

func scanRow(rows *sql.Rows) (*domain.ScanRecord, error) {
	var (
		id           string
		invitationID sql.NullString
		operatorID   string
		scannedAtMs  int64
		admitCount   int
		decision     string
		mode         string
		synced       int
		guestName    string
		guestPhone   sql.NullString
		groupSize    sql.NullInt64
	)

	if err := rows.Scan(&id, &invitationID, &operatorID, &scannedAtMs, &admitCount,
		&decision, &mode, &synced, &guestName, &guestPhone, &groupSize); err != nil {
		return nil, fmt.Errorf("scan scan_record row: %w", err)
	}

	recID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("scan_record id %q: %w", id, err)
	}
	opID, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, fmt.Errorf("scan_record %s operator id %q: %w", id, operatorID, err)
	}

	rec := &domain.ScanRecord{
		ID:         recID,
		OperatorID: opID,
		ScannedAt:  time.UnixMilli(scannedAtMs).UTC(),
		AdmitCount: admitCount,
		Decision:   domain.ScanDecision(decision),
		Mode:       domain.ScanMode(mode),
		Synced:     synced != 0,
		GuestName:  guestName,
	}

	if invitationID.Valid {
		invID, err := uuid.Parse(invitationID.String)
		if err != nil {
			return nil, fmt.Errorf("scan_record %s invitation id %q: %w", id, invitationID.String, err)
		}
		rec.InvitationID = &invID
	}
	if guestPhone.Valid {
		rec.GuestPhone = &guestPhone.String
	}
	if groupSize.Valid {
		v := int(groupSize.Int64)
		rec.GroupSize = &v
	}

	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
