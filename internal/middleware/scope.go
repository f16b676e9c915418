package middleware

import (
	"net/http"
	"strings"

	"shopdesk-be/internal/logger"
)

const (
	OwnerIDHeader   = "X-Owner-ID"
	SessionIDHeader = "X-Session-ID"
)

// Scope copies the owner and cart session headers into the request context
// so handlers and log lines see them.
func Scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if owner := strings.TrimSpace(r.Header.Get(OwnerIDHeader)); owner != "" {
			ctx = logger.WithOwnerID(ctx, owner)
		}
		if session := strings.TrimSpace(r.Header.Get(SessionIDHeader)); session != "" {
			ctx = logger.WithSessionID(ctx, session)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORS allows browser calls from origin.
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", strings.Join([]string{
				"Content-Type", logger.RequestIDHeader, OwnerIDHeader, SessionIDHeader,
			}, ", "))

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
