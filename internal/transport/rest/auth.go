package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/btpass/backend/internal/service/session"
)

// sessionService defines the minimal interface needed by AuthHandler.
type sessionService interface {
	Login(ctx context.Context, input session.LoginInput) (*session.SessionResult, error)
}

// AuthHandler serves operator login.
type AuthHandler struct {
	svc sessionService
	log *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc sessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger.With("handler", "auth")}
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	Operator operatorResponse `json:"operator"`
}

type operatorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Login(r.Context(), session.LoginInput{
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		Operator: operatorResponse{
			ID:    result.Operator.ID.String(),
			Name:  result.Operator.Name,
			Phone: result.Operator.Phone,
			Role:  result.Operator.Role.String(),
		},
	})
}
