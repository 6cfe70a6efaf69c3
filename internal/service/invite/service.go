// Package invite issues invitations: a ledger row plus the encrypted token
// the guest receives as a QR code.
package invite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
)

const MaxGroupSize = 50

type invitationRepo interface {
	CreateInvitation(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	FetchInvitation(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
}

type tokenEncoder interface {
	Encode(invitationID uuid.UUID, guestName string) (string, error)
}

// Service creates invitations on the ledger and encodes their QR tokens.
type Service struct {
	invitations invitationRepo
	codec       tokenEncoder
	log         *slog.Logger
}

// NewService creates the invite service.
func NewService(log *slog.Logger, invitations invitationRepo, codec tokenEncoder) *Service {
	return &Service{
		invitations: invitations,
		codec:       codec,
		log:         log.With("service", "invite"),
	}
}

// CreateInput describes the party to invite.
type CreateInput struct {
	GuestName  string
	GuestPhone *string
	GroupSize  int
}

// Validate checks the invitation fields.
func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.GuestName) == "" {
		return domain.NewValidationError("guest_name", "must not be empty")
	}
	if in.GroupSize < 1 {
		return domain.NewValidationError("group_size", "must be at least 1")
	}
	if in.GroupSize > MaxGroupSize {
		return domain.NewValidationError("group_size", fmt.Sprintf("must be at most %d", MaxGroupSize))
	}
	return nil
}

// CreateResult is the stored invitation plus the token to print as a QR code.
type CreateResult struct {
	Invitation *domain.Invitation
	Token      string
}

// Create stores a new ACTIVE invitation and returns its encoded token.
func (s *Service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.GuestName)
	phone := trimOrNil(input.GuestPhone)

	inv, err := s.invitations.CreateInvitation(ctx, &domain.Invitation{
		ID:         uuid.New(),
		GuestName:  name,
		GuestPhone: phone,
		GroupSize:  input.GroupSize,
		Status:     domain.InvitationStatusActive,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	token, err := s.codec.Encode(inv.ID, inv.GuestName)
	if err != nil {
		return nil, fmt.Errorf("encode invitation token: %w", err)
	}

	s.log.InfoContext(ctx, "invitation issued",
		slog.String("invitation_id", inv.ID.String()),
		slog.Int("group_size", inv.GroupSize),
	)

	return &CreateResult{Invitation: inv, Token: token}, nil
}

// Reissue re-encodes the token for an existing invitation, for guests who
// lost the original QR code. The invitation itself is untouched.
func (s *Service) Reissue(ctx context.Context, invitationID uuid.UUID) (*CreateResult, error) {
	inv, err := s.invitations.FetchInvitation(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("fetch invitation: %w", err)
	}

	token, err := s.codec.Encode(inv.ID, inv.GuestName)
	if err != nil {
		return nil, fmt.Errorf("encode invitation token: %w", err)
	}

	return &CreateResult{Invitation: inv, Token: token}, nil
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
