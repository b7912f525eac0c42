// Package http assembles the service's HTTP surface: the public screening
// endpoints, the operator admin surface, and the platform endpoints
// (welcome, health, metrics, token minting).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veriscreen/internal/jwttoken"
	"veriscreen/internal/platform/metrics"
	platformmw "veriscreen/internal/platform/middleware"
	screening "veriscreen/internal/screening/handler"
	"veriscreen/internal/screening/secrets"
	dErrors "veriscreen/pkg/domain-errors"
	audit "veriscreen/pkg/platform/audit"
	"veriscreen/pkg/platform/httputil"
	adminmw "veriscreen/pkg/platform/middleware/admin"
	authmw "veriscreen/pkg/platform/middleware/auth"
	metadatamw "veriscreen/pkg/platform/middleware/metadata"
	requesttimemw "veriscreen/pkg/platform/middleware/requesttime"
	"veriscreen/pkg/requestcontext"
)

const (
	requestTimeout = 30 * time.Second
	tokenLifetime  = time.Hour
)

// HealthCheck pings one dependency. A non-nil error marks it degraded; the
// service itself stays live because evaluation needs no infrastructure.
type HealthCheck func(ctx context.Context) error

// Deps carries the router's collaborators. Optional fields disable their
// routes or middleware when left zero.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Screening *screening.Handler
	JWT       *jwttoken.JWTService
	// RequireAuth guards the screening endpoints with bearer tokens.
	RequireAuth bool
	// AdminToken enables the /admin surface when set.
	AdminToken string
	// APIKeyHash enables POST /auth/token when set.
	APIKeyHash string
	// Events receives security audit events. Sends never block.
	Events chan<- audit.Event
	// Health holds named dependency pings for /healthz.
	Health map[string]HealthCheck
}

// New assembles the top-level router with the shared middleware chain.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(platformmw.Recovery(deps.Logger))
	r.Use(platformmw.RequestID)
	r.Use(requesttimemw.Middleware)
	r.Use(metadatamw.ClientMetadata)
	r.Use(platformmw.Logger(deps.Logger))
	r.Use(platformmw.Timeout(requestTimeout))
	r.Use(platformmw.ContentTypeJSON)
	if deps.Metrics != nil {
		r.Use(platformmw.LatencyMiddleware(deps.Metrics))
	}

	r.Get("/", handleWelcome)
	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if deps.APIKeyHash != "" && deps.JWT != nil {
		r.Post("/auth/token", handleToken(deps))
	}

	r.Group(func(r chi.Router) {
		if deps.RequireAuth && deps.JWT != nil {
			validator := jwttoken.NewJWTServiceAdapter(deps.JWT)
			r.Use(securityAudit(deps.Events, audit.EventAuthFailed))
			r.Use(authmw.RequireAuth(validator, deps.Logger))
		}
		deps.Screening.Register(r)
	})

	if deps.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(securityAudit(deps.Events, audit.EventAdminTokenRejected))
			r.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Screening.RegisterAdmin(r)
		})
	}

	return r
}

func handleWelcome(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Tenant Screening Match Evaluator API",
	})
}

// handleHealth reports per-dependency status. Degraded dependencies do not
// fail liveness.
func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = "degraded: " + err.Error()
			} else {
				deps[name] = "ok"
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"dependencies": deps,
		})
	}
}

// tokenRequest is the body of the dev token-minting endpoint.
type tokenRequest struct {
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
}

// Validate implements httputil.Validatable.
func (r *tokenRequest) Validate() error {
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if r.APIKey == "" {
		return dErrors.New(dErrors.CodeValidation, "api_key is required")
	}
	return nil
}

// handleToken mints a service token for a client presenting the configured
// API key. Local and dev tooling only; production callers bring tokens from
// their own issuer.
func handleToken(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		req, ok := httputil.DecodeAndPrepare[tokenRequest](w, r, deps.Logger, ctx, requestID)
		if !ok {
			return
		}

		if err := secrets.Verify(req.APIKey, deps.APIKeyHash); err != nil {
			deps.Logger.WarnContext(ctx, "token minting rejected",
				"request_id", requestID,
				"client_id", req.ClientID,
			)
			emitSecurityEvent(ctx, deps.Events, audit.EventAuthFailed)
			httputil.WriteError(w, err)
			return
		}

		token, err := deps.JWT.GenerateServiceToken(req.ClientID, "dev-tooling", tokenLifetime)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not mint token"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(tokenLifetime.Seconds()),
		})
	}
}

// securityAudit emits a security event whenever the wrapped chain rejects the
// request with 401. The guards themselves stay audit-agnostic.
func securityAudit(events chan<- audit.Event, action audit.AuditEvent) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status == http.StatusUnauthorized {
				emitSecurityEvent(r.Context(), events, action)
			}
		})
	}
}

func emitSecurityEvent(ctx context.Context, events chan<- audit.Event, action audit.AuditEvent) {
	if events == nil {
		return
	}
	event := audit.Event{
		Category:  audit.CategorySecurity,
		Timestamp: time.Now(),
		Action:    string(action),
		RequestID: requestcontext.RequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		ClientApp: requestcontext.UserAgentDetails(ctx).String(),
	}
	select {
	case events <- event:
	default:
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
