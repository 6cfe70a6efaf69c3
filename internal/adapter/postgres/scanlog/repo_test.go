package scanlog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/btpass/backend/internal/adapter/postgres/scanlog"
	"github.com/btpass/backend/internal/adapter/postgres/testhelper"
	"github.com/btpass/backend/internal/domain"
)

func buildRecord(invID, opID uuid.UUID) *domain.ScanRecord {
	return &domain.ScanRecord{
		ID:           uuid.New(),
		InvitationID: &invID,
		OperatorID:   opID,
		ScannedAt:    time.Now().UTC().Truncate(time.Microsecond),
		AdmitCount:   2,
		Decision:     domain.ScanDecisionAdmit,
		Mode:         domain.ScanModeOffline,
	}
}

func TestRepo_Insert_IdempotentByID(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := scanlog.New(pool)
	ctx := context.Background()

	op := testhelper.SeedOperator(t, pool)
	inv := testhelper.SeedInvitation(t, pool, 2)
	rec := buildRecord(inv.ID, op.ID)

	require.NoError(t, repo.Insert(ctx, rec))
	// A sync replay after partial failure re-inserts the same id.
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.List(ctx, scanlog.Filter{InvitationID: &inv.ID})
	require.NoError(t, err)
	require.Len(t, got, 1, "replayed insert must not duplicate the row")
	require.Equal(t, rec.ID, got[0].ID)
	require.Equal(t, domain.ScanDecisionAdmit, got[0].Decision)
	require.Equal(t, domain.ScanModeOffline, got[0].Mode)
	require.True(t, got[0].Synced)
}

func TestRepo_Insert_NilInvitation(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := scanlog.New(pool)
	ctx := context.Background()

	op := testhelper.SeedOperator(t, pool)
	rec := buildRecord(uuid.Nil, op.ID)
	rec.InvitationID = nil

	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.List(ctx, scanlog.Filter{OperatorID: &op.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].InvitationID)
}

func TestRepo_List_FilterAndOrder(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := scanlog.New(pool)
	ctx := context.Background()

	op := testhelper.SeedOperator(t, pool)
	inv := testhelper.SeedInvitation(t, pool, 1)

	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec := buildRecord(inv.ID, op.ID)
		rec.ScannedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Insert(ctx, rec))
		ids = append(ids, rec.ID)
	}

	got, err := repo.List(ctx, scanlog.Filter{OperatorID: &op.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, ids[2], got[0].ID, "newest first")

	limited, err := repo.List(ctx, scanlog.Filter{OperatorID: &op.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	mode := domain.ScanModeOnline
	none, err := repo.List(ctx, scanlog.Filter{OperatorID: &op.ID, Mode: &mode})
	require.NoError(t, err)
	require.Empty(t, none)
}
