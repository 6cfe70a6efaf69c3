package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/service/invite"
	"github.com/btpass/backend/internal/transport/middleware"
)

// inviteService defines the minimal interface needed by InvitationHandler.
type inviteService interface {
	Create(ctx context.Context, input invite.CreateInput) (*invite.CreateResult, error)
	Reissue(ctx context.Context, invitationID uuid.UUID) (*invite.CreateResult, error)
}

// InvitationHandler serves admin-only invitation issuing.
type InvitationHandler struct {
	svc inviteService
	log *slog.Logger
}

// NewInvitationHandler creates an InvitationHandler.
func NewInvitationHandler(svc inviteService, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{svc: svc, log: logger.With("handler", "invitation")}
}

type createInvitationRequest struct {
	GuestName  string  `json:"guestName"`
	GuestPhone *string `json:"guestPhone,omitempty"`
	GroupSize  int     `json:"groupSize"`
}

type invitationResponse struct {
	ID             string  `json:"id"`
	GuestName      string  `json:"guestName"`
	GuestPhone     *string `json:"guestPhone,omitempty"`
	GroupSize      int     `json:"groupSize"`
	Status         string  `json:"status"`
	CheckedInCount int     `json:"checkedInCount"`
	Token          string  `json:"token"`
}

// Create handles POST /api/v1/invitations.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Create(r.Context(), invite.CreateInput{
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GroupSize:  req.GroupSize,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvitationResponse(res))
}

// Reissue handles GET /api/v1/invitations/{id}/token: re-encode the QR token
// for a guest who lost the original.
func (h *InvitationHandler) Reissue(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	invitationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid invitation id")
		return
	}

	res, err := h.svc.Reissue(r.Context(), invitationID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvitationResponse(res))
}

func toInvitationResponse(res *invite.CreateResult) invitationResponse {
	inv := res.Invitation
	return invitationResponse{
		ID:             inv.ID.String(),
		GuestName:      inv.GuestName,
		GuestPhone:     inv.GuestPhone,
		GroupSize:      inv.GroupSize,
		Status:         inv.Status.String(),
		CheckedInCount: inv.CheckedInCount,
		Token:          res.Token,
	}
}
