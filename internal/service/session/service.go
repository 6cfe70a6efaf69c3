// Package session authenticates operators against the ledger and issues the
// JWT the terminal holds for the rest of the shift.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/btpass/backend/internal/domain"
)

type operatorRepo interface {
	LookupOperatorByPhone(ctx context.Context, phone string) (*domain.Operator, error)
	LookupOperatorByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error)
}

type jwtManager interface {
	GenerateSessionToken(operatorID uuid.UUID, role string) (string, error)
	ValidateSessionToken(token string) (uuid.UUID, string, error)
}

// Service handles operator login and session token validation.
type Service struct {
	operators operatorRepo
	jwt       jwtManager
	log       *slog.Logger
}

// NewService creates the session service.
func NewService(log *slog.Logger, operators operatorRepo, jwt jwtManager) *Service {
	return &Service{
		operators: operators,
		jwt:       jwt,
		log:       log.With("service", "session"),
	}
}

// LoginInput is the credentials payload from the terminal login form.
type LoginInput struct {
	Phone    string
	Password string
}

// Validate checks the login form fields.
func (in *LoginInput) Validate() error {
	if strings.TrimSpace(in.Phone) == "" {
		return domain.NewValidationError("phone", "must not be empty")
	}
	if in.Password == "" {
		return domain.NewValidationError("password", "must not be empty")
	}
	return nil
}

// SessionResult is the issued session for a logged-in operator.
type SessionResult struct {
	Token    string
	Operator *domain.Operator
}

// Login authenticates an operator with phone + password.
// Returns ErrUnauthorized when the phone is unknown or the password is wrong.
func (s *Service) Login(ctx context.Context, input LoginInput) (*SessionResult, error) {
	input.Phone = strings.TrimSpace(input.Phone)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	op, err := s.operators.LookupOperatorByPhone(ctx, input.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("session.Login lookup operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.jwt.GenerateSessionToken(op.ID, op.Role.String())
	if err != nil {
		return nil, fmt.Errorf("session.Login issue token: %w", err)
	}

	s.log.InfoContext(ctx, "operator logged in",
		slog.String("operator_id", op.ID.String()),
		slog.String("role", op.Role.String()),
	)

	return &SessionResult{Token: token, Operator: op}, nil
}

// Validate resolves a bearer token to the operator id and role it carries.
// The ledger is not consulted: a session stays valid through an outage.
func (s *Service) Validate(token string) (uuid.UUID, domain.OperatorRole, error) {
	operatorID, role, err := s.jwt.ValidateSessionToken(token)
	if err != nil {
		return uuid.Nil, "", domain.ErrUnauthorized
	}
	return operatorID, domain.OperatorRole(role), nil
}
