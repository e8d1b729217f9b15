package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Header names the edge reads for identity and privilege.
const (
	HeaderUserID      = "X-User-ID"
	HeaderOperatorKey = "X-Operator-Key"
)

// WithPrincipal resolves the caller identity from headers and stores it in
// the request context. Privilege comes from development mode or an operator
// key matching the configured hash. Requests without identity still pass;
// handlers that need a caller reject them.
func WithPrincipal(verifier *OperatorKeyVerifier, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := Principal{UserID: strings.TrimSpace(r.Header.Get(HeaderUserID))}

			if devMode {
				principal.Privileged = true
			} else if key := r.Header.Get(HeaderOperatorKey); key != "" {
				principal.Privileged = verifier.Verify(key) == nil
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger numbers each request and carries a scoped logger in the
// context so handlers and the responder log with request attributes.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
