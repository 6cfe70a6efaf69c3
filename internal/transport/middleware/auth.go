package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
	"github.com/btpass/backend/pkg/ctxutil"
)

type sessionValidator interface {
	Validate(token string) (uuid.UUID, domain.OperatorRole, error)
}

// Auth requires a valid operator session on every request it wraps. Token
// validation is purely local (JWT signature), so an offline terminal keeps
// accepting its logged-in operator.
func Auth(validator sessionValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			operatorID, role, err := validator.Validate(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ctxutil.WithOperatorID(r.Context(), operatorID)
			ctx = ctxutil.WithOperatorRole(ctx, role.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns domain.ErrForbidden if the context operator is not an
// admin. Use inside handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	if ctxutil.OperatorRoleFromCtx(ctx) != domain.OperatorRoleAdmin.String() {
		return domain.ErrForbidden
	}
	return nil
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
