package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/btpass/backend/internal/domain"
)

func TestMapError(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists},
		{"fk violation", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{"check violation", &pgconn.PgError{Code: "23514"}, domain.ErrValidation},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
		{"canceled", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.in, "invitation", id)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("got %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("got %v, want wrapped %v", got, tt.want)
			}
		})
	}
}

func TestMapError_UnknownPassesThrough(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	got := MapError(cause, "invitation", uuid.Nil)
	if !errors.Is(got, cause) {
		t.Errorf("unknown errors must stay unwrappable to the cause, got %v", got)
	}
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("unknown error must not map to a domain sentinel")
	}
}
