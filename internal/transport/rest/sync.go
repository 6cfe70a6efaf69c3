package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/btpass/backend/internal/service/sync"
)

// syncService defines the minimal interface needed by SyncHandler.
type syncService interface {
	TriggerSync(ctx context.Context) (sync.Result, error)
	PendingCount(ctx context.Context) (int, error)
}

// connectivityReporter is the monitor surface the web shell drives.
type connectivityReporter interface {
	Online() bool
	Report(online bool)
}

// SyncHandler serves sync triggers and connectivity reports from the shell.
type SyncHandler struct {
	svc     syncService
	network connectivityReporter
	log     *slog.Logger
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(svc syncService, network connectivityReporter, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, network: network, log: logger.With("handler", "sync")}
}

type syncResultResponse struct {
	Ran    bool `json:"ran"`
	Total  int  `json:"total"`
	Synced int  `json:"synced"`
	Failed int  `json:"failed"`
}

// Trigger handles POST /api/v1/sync: a manual "sync now" from the operator.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.TriggerSync(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResultResponse{
		Ran:    res.Ran,
		Total:  res.Total,
		Synced: res.Synced,
		Failed: res.Failed,
	})
}

// Status handles GET /api/v1/sync/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.PendingCount(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Online  bool `json:"online"`
		Pending int  `json:"pending"`
	}{
		Online:  h.network.Online(),
		Pending: pending,
	})
}

type connectivityRequest struct {
	Online bool `json:"online"`
}

// Connectivity handles POST /api/v1/connectivity. The browser shell forwards
// its online/offline events here; an offline-to-online edge kicks off a sync
// pass through the monitor subscription.
func (h *SyncHandler) Connectivity(w http.ResponseWriter, r *http.Request) {
	var req connectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.network.Report(req.Online)
	w.WriteHeader(http.StatusNoContent)
}
