// Package scanlog implements the mirrored scan history at the remote ledger.
package scanlog

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/btpass/backend/internal/adapter/postgres"
	"github.com/btpass/backend/internal/domain"
)

// insertSQL is idempotent by the client-generated record id: the sync loop
// may replay an insert after a partial prior failure and the ledger must not
// grow a duplicate row.
const insertSQL = `
INSERT INTO scan_logs (id, invitation_id, operator_id, scanned_at, admit_count, decision, mode)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

// Repo provides scan log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new scan log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Insert mirrors a locally persisted scan record. Safe to retry.
func (r *Repo) Insert(ctx context.Context, rec *domain.ScanRecord) error {
	_, err := r.pool.Exec(ctx, insertSQL,
		rec.ID,
		rec.InvitationID,
		rec.OperatorID,
		rec.ScannedAt.UTC(),
		rec.AdmitCount,
		rec.Decision.String(),
		rec.Mode.String(),
	)
	if err != nil {
		return postgres.MapError(err, "scan_log", rec.ID)
	}
	return nil
}

// Filter narrows List results for the admin dashboard's log view.
type Filter struct {
	InvitationID *uuid.UUID
	OperatorID   *uuid.UUID
	Mode         *domain.ScanMode
	Limit        int
}

// List returns mirrored scans matching the filter, newest first.
func (r *Repo) List(ctx context.Context, f Filter) ([]*domain.ScanRecord, error) {
	qb := sq.Select("id", "invitation_id", "operator_id", "scanned_at", "admit_count", "decision", "mode").
		From("scan_logs").
		OrderBy("scanned_at DESC").
		PlaceholderFormat(sq.Dollar)

	if f.InvitationID != nil {
		qb = qb.Where(sq.Eq{"invitation_id": *f.InvitationID})
	}
	if f.OperatorID != nil {
		qb = qb.Where(sq.Eq{"operator_id": *f.OperatorID})
	}
	if f.Mode != nil {
		qb = qb.Where(sq.Eq{"mode": f.Mode.String()})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scan_logs query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scan_logs: %w", err)
	}
	defer rows.Close()

	records := []*domain.ScanRecord{}
	for rows.Next() {
		var (
			rec      domain.ScanRecord
			decision string
			mode     string
		)
		if err := rows.Scan(&rec.ID, &rec.InvitationID, &rec.OperatorID,
			&rec.ScannedAt, &rec.AdmitCount, &decision, &mode); err != nil {
			return nil, fmt.Errorf("scan scan_log row: %w", err)
		}
		rec.Decision = domain.ScanDecision(decision)
		rec.Mode = domain.ScanMode(mode)
		// Mirrored rows are synced by definition.
		rec.Synced = true
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan_logs: %w", err)
	}

	return records, nil
}
