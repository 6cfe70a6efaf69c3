package rest

import (
	"context"
	"net/http"
	"time"
)

// pinger is the minimal interface for component health checks.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves health check endpoints. The local store is the
// critical component; the ledger being down is normal operation.
type HealthHandler struct {
	store   pinger
	ledger  pinger
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(store, ledger pinger, version string) *HealthHandler {
	return &HealthHandler{store: store, ledger: ledger, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe. Pings the local store: 200 if OK, 503 if
// not. The ledger is deliberately not part of readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check with per-component status and latency.
// Overall status degrades only when the local store is down: a terminal with
// an unreachable ledger is "degraded", still fully able to admit guests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"
	httpStatus := http.StatusOK

	components["local_store"] = checkComponent(ctx, h.store)
	components["ledger"] = checkComponent(ctx, h.ledger)

	if components["local_store"].Status != "ok" {
		overallStatus = "down"
		httpStatus = http.StatusServiceUnavailable
	} else if components["ledger"].Status != "ok" {
		overallStatus = "degraded"
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func checkComponent(ctx context.Context, p pinger) CompStatus {
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return CompStatus{Status: "down"}
	}
	return CompStatus{Status: "ok", Latency: time.Since(start).String()}
}
