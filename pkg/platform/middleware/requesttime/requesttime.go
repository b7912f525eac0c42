// Package requesttime provides middleware for request-scoped time.
// Every operation within a single HTTP request observes the same "now", so
// age derivation, evaluation timestamps, and audit records stay consistent.
package requesttime

import (
	"net/http"
	"time"

	"veriscreen/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context. Downstream code reads it via requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
