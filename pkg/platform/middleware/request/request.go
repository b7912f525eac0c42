// Package request assigns each incoming request a unique identifier used to
// correlate log lines, audit events, and responses.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"veriscreen/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware stores a request ID in the context and echoes it back in the
// X-Request-ID response header. An inbound X-Request-ID is honored so callers
// can correlate across services; otherwise a fresh UUID is generated.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context, or "" when the
// middleware did not run.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
