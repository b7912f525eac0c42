// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	clientID := requestcontext.ClientID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithClientID(ctx, clientID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	clientIDKey      struct{}
	clientIPKey      struct{}
	userAgentKey     struct{}
	userAgentInfoKey struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyClientID      = clientIDKey{}
	ContextKeyClientIP      = clientIPKey{}
	ContextKeyUserAgent     = userAgentKey{}
	ContextKeyUserAgentInfo = userAgentInfoKey{}
	ContextKeyRequestID     = requestIDKey{}
	ContextKeyRequestTime   = requestTimeKey{}
)

// UserAgentInfo is the parsed form of the User-Agent header, populated by the
// client metadata middleware for audit enrichment.
type UserAgentInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
	Mobile         bool
	Bot            bool
}

// String renders the parsed agent the way audit trails record it, e.g.
// "Chrome 120.0.0.0 on Windows 10". Bots render as "bot (<name>)"; the zero
// value renders empty so unparsed agents stay out of the trail.
func (i UserAgentInfo) String() string {
	if i.Bot {
		if i.Browser != "" {
			return "bot (" + i.Browser + ")"
		}
		return "bot"
	}
	out := i.Browser
	if out != "" && i.BrowserVersion != "" {
		out += " " + i.BrowserVersion
	}
	if i.OS != "" {
		if out == "" {
			return i.OS
		}
		out += " on " + i.OS
	}
	return out
}

// -----------------------------------------------------------------------------
// Auth context
// -----------------------------------------------------------------------------

// ClientID retrieves the authenticated calling service's client ID from the
// context. Returns "" if the request was not authenticated.
func ClientID(ctx context.Context) string {
	if clientID, ok := ctx.Value(ContextKeyClientID).(string); ok {
		return clientID
	}
	return ""
}

// WithClientID injects a client ID into the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ContextKeyClientID, clientID)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent header from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// UserAgentDetails retrieves the parsed User-Agent info from the context.
// The zero value means the metadata middleware did not run.
func UserAgentDetails(ctx context.Context) UserAgentInfo {
	if info, ok := ctx.Value(ContextKeyUserAgentInfo).(UserAgentInfo); ok {
		return info
	}
	return UserAgentInfo{}
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// WithUserAgentInfo injects parsed User-Agent details into a context.
func WithUserAgentInfo(ctx context.Context, info UserAgentInfo) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgentInfo, info)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers and tests).
//
// Age derivation in the scoring engine reads this clock, so every candidate in
// one request is aged against the same instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
