package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/btpass/backend/pkg/ctxutil"
)

// RequestID tags every request with an id, honoring one the terminal shell
// already set so a scan can be traced across retries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := ctxutil.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
