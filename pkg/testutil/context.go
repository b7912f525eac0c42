package testutil

import (
	"context"
	"net/http"
	"time"

	"veriscreen/pkg/requestcontext"
)

// WithClientID adds an authenticated client ID to the request context, as the
// auth middleware would after validating a token.
func WithClientID(req *http.Request, clientID string) *http.Request {
	ctx := requestcontext.WithClientID(req.Context(), clientID)
	return req.WithContext(ctx)
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock, so age derivation and
// timestamps are deterministic in tests.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
