package middleware

import (
	"context"
	"net/http"

	"github.com/slemppa/storized/internal/session"
)

type sessionContextKey struct{}

// SessionLoader resolves the session behind an opaque id. Load runs the full
// bootstrap against the backend; Resume answers from the local record.
type SessionLoader interface {
	Load(ctx context.Context, sessionID string) session.State
	Resume(ctx context.Context, sessionID string) session.State
}

// Session resolves the web session once per request and stores the result in
// the context. Full page loads bootstrap against the backend; HTMX fragments
// and form posts resume the local session. Requests without a cookie skip
// both.
func Session(loader SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := session.State{}
			if id, ok := session.ReadCookie(r); ok {
				if isPageLoad(r) {
					state = loader.Load(r.Context(), id)
				} else {
					state = loader.Resume(r.Context(), id)
				}
			}
			ctx := context.WithValue(r.Context(), sessionContextKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isPageLoad reports whether r is a top-level browser navigation.
func isPageLoad(r *http.Request) bool {
	return r.Method == http.MethodGet && r.Header.Get("HX-Request") != "true"
}

// SessionFromContext returns the bootstrapped session, or the initial state
// when the Session middleware did not run.
func SessionFromContext(ctx context.Context) session.State {
	if v, ok := ctx.Value(sessionContextKey{}).(session.State); ok {
		return v
	}
	return session.Initial()
}
