package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/btpass/backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedOperator creates an usher operator account. Returns a filled domain.Operator.
func SeedOperator(t *testing.T, pool *pgxpool.Pool) domain.Operator {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	op := domain.Operator{
		ID:           uuid.New(),
		Name:         "Test Usher " + suffix,
		Phone:        "+1555" + suffix[:7],
		Role:         domain.OperatorRoleUsher,
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtesth",
		CreatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO operators (id, name, phone, role, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		op.ID, op.Name, op.Phone, string(op.Role), op.PasswordHash, op.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedOperator insert: %v", err)
	}

	return op
}

// SeedInvitation creates an ACTIVE invitation for a party of groupSize.
func SeedInvitation(t *testing.T, pool *pgxpool.Pool, groupSize int) domain.Invitation {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	phone := "+1666" + suffix[:7]
	inv := domain.Invitation{
		ID:             uuid.New(),
		GuestName:      "Test Guest " + suffix,
		GuestPhone:     &phone,
		GroupSize:      groupSize,
		Status:         domain.InvitationStatusActive,
		CheckedInCount: 0,
		CreatedAt:      now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO invitations (id, guest_name, guest_phone, group_size, status, checked_in_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.GuestName, inv.GuestPhone, inv.GroupSize, string(inv.Status), inv.CheckedInCount, inv.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedInvitation insert: %v", err)
	}

	return inv
}
