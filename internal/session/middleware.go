package session

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/af-corp/prism-enhance/internal/httputil"
)

// Resolve returns a chi middleware that attaches a Caller to every request.
// It never rejects: requests without a usable session become anonymous
// callers keyed by client IP. Store errors also resolve to anonymous here;
// RequireAuth is where that turns into a 401.
func Resolve(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := &Caller{
				SessionID: identityFrom(r),
				IP:        clientIP(r),
			}

			if caller.SessionID != "" {
				rec, err := store.Lookup(r.Context(), caller.SessionID)
				if err != nil {
					slog.Warn("session lookup failed", "error", err, "session_id", caller.SessionID)
				} else {
					caller.Record = rec
				}
			}

			ctx := ContextWithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose caller has no live session.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			caller, ok := CallerFromContext(r.Context())
			if !ok || caller.SessionID == "" {
				httputil.WriteAuthError(w, reqID, "Not authenticated")
				return
			}
			if caller.Record == nil {
				httputil.WriteAuthError(w, reqID, "Session expired or invalid")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// identityFrom extracts the presented identity: header first, then cookie.
func identityFrom(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	if c, err := r.Cookie("user_id"); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

// clientIP strips the port from RemoteAddr. Behind middleware.RealIP the
// address may already be bare.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
