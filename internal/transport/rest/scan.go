package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
	"github.com/btpass/backend/internal/service/scan"
)

// scanService defines the minimal interface needed by ScanHandler.
type scanService interface {
	Begin(ctx context.Context, rawText string) (*scan.BeginResult, error)
	Confirm(ctx context.Context, attemptID uuid.UUID) (*scan.ConfirmResult, error)
	Cancel(ctx context.Context, attemptID uuid.UUID)
}

// scanStore defines the local-store reads the handler serves directly.
type scanStore interface {
	QueryRecent(ctx context.Context, limit int) ([]*domain.ScanRecord, error)
	CountUnsynced(ctx context.Context) (int, error)
	DeleteSynced(ctx context.Context) (int64, error)
}

// ScanHandler serves the scan flow and local scan history.
type ScanHandler struct {
	svc   scanService
	store scanStore
	log   *slog.Logger
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(svc scanService, store scanStore, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{svc: svc, store: store, log: logger.With("handler", "scan")}
}

type beginRequest struct {
	RawText string `json:"rawText"`
}

type beginResponse struct {
	AttemptID   string            `json:"attemptId"`
	Online      bool              `json:"online"`
	AlreadyUsed bool              `json:"alreadyUsed"`
	Guest       guestResponse     `json:"guest"`
	Snapshot    *snapshotResponse `json:"snapshot,omitempty"`
}

type guestResponse struct {
	InvitationID string `json:"invitationId"`
	Name         string `json:"name"`
}

type snapshotResponse struct {
	GuestName      string  `json:"guestName"`
	GuestPhone     *string `json:"guestPhone,omitempty"`
	GroupSize      int     `json:"groupSize"`
	Status         string  `json:"status"`
	CheckedInCount int     `json:"checkedInCount"`
}

type confirmRequest struct {
	AttemptID string `json:"attemptId"`
}

type confirmResponse struct {
	Record      scanRecordResponse `json:"record"`
	PendingSync bool               `json:"pendingSync"`
}

type scanRecordResponse struct {
	ID           string    `json:"id"`
	InvitationID *string   `json:"invitationId,omitempty"`
	OperatorID   string    `json:"operatorId"`
	ScannedAt    time.Time `json:"scannedAt"`
	AdmitCount   int       `json:"admitCount"`
	Decision     string    `json:"decision"`
	Mode         string    `json:"mode"`
	Synced       bool      `json:"synced"`
	GuestName    string    `json:"guestName"`
	GuestPhone   *string   `json:"guestPhone,omitempty"`
	GroupSize    *int      `json:"groupSize,omitempty"`
}

// Begin handles POST /api/v1/scan.
func (h *ScanHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Begin(r.Context(), req.RawText)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := beginResponse{
		AttemptID:   res.AttemptID.String(),
		Online:      res.Online,
		AlreadyUsed: res.AlreadyUsed,
		Guest: guestResponse{
			InvitationID: res.Token.InvitationID.String(),
			Name:         res.Token.GuestName,
		},
	}
	if snap := res.Snapshot; snap != nil {
		resp.Snapshot = &snapshotResponse{
			GuestName:      snap.GuestName,
			GuestPhone:     snap.GuestPhone,
			GroupSize:      snap.GroupSize,
			Status:         snap.Status.String(),
			CheckedInCount: snap.CheckedInCount,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /api/v1/scan/confirm.
func (h *ScanHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := decodeAttemptID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Confirm(r.Context(), attemptID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, confirmResponse{
		Record:      toScanRecordResponse(res.Record),
		PendingSync: res.PendingSync,
	})
}

// Cancel handles POST /api/v1/scan/cancel.
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := decodeAttemptID(w, r)
	if !ok {
		return
	}

	h.svc.Cancel(r.Context(), attemptID)
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/v1/scans?limit=50.
func (h *ScanHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.store.QueryRecent(r.Context(), limit)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	pending, err := h.store.CountUnsynced(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := struct {
		Records []scanRecordResponse `json:"records"`
		Pending int                  `json:"pending"`
	}{
		Records: make([]scanRecordResponse, 0, len(records)),
		Pending: pending,
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toScanRecordResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteSynced handles DELETE /api/v1/scans/synced. Housekeeping: drops
// records that are already mirrored to the ledger.
func (h *ScanHandler) DeleteSynced(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.DeleteSynced(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func decodeAttemptID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return uuid.Nil, false
	}
	attemptID, err := uuid.Parse(req.AttemptID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attempt id")
		return uuid.Nil, false
	}
	return attemptID, true
}

func toScanRecordResponse(rec *domain.ScanRecord) scanRecordResponse {
	resp := scanRecordResponse{
		ID:         rec.ID.String(),
		OperatorID: rec.OperatorID.String(),
		ScannedAt:  rec.ScannedAt,
		AdmitCount: rec.AdmitCount,
		Decision:   rec.Decision.String(),
		Mode:       rec.Mode.String(),
		Synced:     rec.Synced,
		GuestName:  rec.GuestName,
		GuestPhone: rec.GuestPhone,
		GroupSize:  rec.GroupSize,
	}
	if rec.InvitationID != nil {
		v := rec.InvitationID.String()
		resp.InvitationID = &v
	}
	return resp
}
