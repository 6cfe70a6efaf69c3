package rest

import (
	"net/http"

	"github.com/btpass/backend/internal/transport/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Scan       *ScanHandler
	Sync       *SyncHandler
	Invitation *InvitationHandler
	Health     *HealthHandler
}

// NewRouter builds the API mux. Everything under /api/v1 except login runs
// behind the session middleware; health endpoints are open.
func NewRouter(h Handlers, authMW, loginLimit middleware.Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/auth/login", loginLimit(http.HandlerFunc(h.Auth.Login)))

	protected := func(handler http.HandlerFunc) http.Handler {
		return authMW(handler)
	}

	mux.Handle("POST /api/v1/scan", protected(h.Scan.Begin))
	mux.Handle("POST /api/v1/scan/confirm", protected(h.Scan.Confirm))
	mux.Handle("POST /api/v1/scan/cancel", protected(h.Scan.Cancel))
	mux.Handle("GET /api/v1/scans", protected(h.Scan.History))
	mux.Handle("DELETE /api/v1/scans/synced", protected(h.Scan.DeleteSynced))

	mux.Handle("POST /api/v1/sync", protected(h.Sync.Trigger))
	mux.Handle("GET /api/v1/sync/status", protected(h.Sync.Status))
	mux.Handle("POST /api/v1/connectivity", protected(h.Sync.Connectivity))

	mux.Handle("POST /api/v1/invitations", protected(h.Invitation.Create))
	mux.Handle("GET /api/v1/invitations/{id}/token", protected(h.Invitation.Reissue))

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	return mux
}
