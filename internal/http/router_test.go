package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriscreen/internal/jwttoken"
	screening "veriscreen/internal/screening/handler"
	"veriscreen/internal/screening/secrets"
	"veriscreen/internal/screening/service"
	"veriscreen/internal/screening/store/evaluation"
	audit "veriscreen/pkg/platform/audit"
	"veriscreen/pkg/platform/audit/publishers/compliance"
	auditmem "veriscreen/pkg/platform/audit/store/memory"
	"veriscreen/pkg/testutil"
)

type routerFixture struct {
	router http.Handler
	events chan audit.Event
	apiKey string
}

// newRouterFixture assembles a fully guarded router over in-memory components.
// mutate adjusts Deps before assembly, so tests can switch guards off.
func newRouterFixture(t *testing.T, mutate func(*Deps)) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := evaluation.NewInMemory()
	svc := service.New(
		store,
		compliance.New(auditmem.NewInMemoryStore(), compliance.WithLogger(logger)),
		service.WithLogger(logger),
	)

	apiKey, err := secrets.Generate()
	require.NoError(t, err)
	hash, err := secrets.Hash(apiKey)
	require.NoError(t, err)

	events := make(chan audit.Event, 8)
	deps := Deps{
		Logger:      logger,
		Screening:   screening.New(svc, logger),
		JWT:         jwttoken.NewJWTService("router-test-key", "veriscreen", "veriscreen-clients"),
		RequireAuth: true,
		AdminToken:  "admin-token",
		APIKeyHash:  hash,
		Events:      events,
	}
	if mutate != nil {
		mutate(&deps)
	}

	return &routerFixture{router: New(deps), events: events, apiKey: apiKey}
}

func evaluatePayload() map[string]any {
	return map[string]any{
		"tenant": map[string]any{
			"first_name": "John",
			"last_name":  "Doe",
			"dob":        "1990-01-01",
		},
		"pipeline_data": map[string]any{"pipeline": []any{}},
	}
}

func requireSecurityEvent(t *testing.T, events <-chan audit.Event, action audit.AuditEvent) audit.Event {
	t.Helper()
	select {
	case event := <-events:
		assert.Equal(t, string(action), event.Action)
		assert.Equal(t, audit.CategorySecurity, event.Category)
		return event
	default:
		t.Fatalf("expected a %s security event", action)
		return audit.Event{}
	}
}

func TestWelcome(t *testing.T) {
	f := newRouterFixture(t, nil)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/"))

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "message", "Welcome to the Tenant Screening Match Evaluator API")
}

func TestHealthReportsDegradedDependencies(t *testing.T) {
	f := newRouterFixture(t, func(deps *Deps) {
		deps.Health = map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}
	})

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}](t, rr)
	assert.Equal(t, "ok", resp.Status, "degraded dependencies must not fail liveness")
	assert.Equal(t, "ok", resp.Dependencies["postgres"])
	assert.Contains(t, resp.Dependencies["redis"], "degraded")
}

func TestTokenMintingAndAuthFlow(t *testing.T) {
	f := newRouterFixture(t, nil)
	var token string

	testutil.When(t, "a client presents the configured API key", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]string{
			"client_id": "screening-portal",
			"api_key":   f.apiKey,
		}))

		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int    `json:"expires_in"`
		}](t, rr)
		require.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Positive(t, resp.ExpiresIn)
		token = resp.AccessToken
	})

	testutil.Then(t, "the minted token opens the screening surface", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/screening/evaluate", evaluatePayload())
		req.Header.Set("Authorization", "Bearer "+token)

		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "evaluation_id")
	})
}

func TestTokenMintingRejectsWrongKey(t *testing.T) {
	f := newRouterFixture(t, nil)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]string{
		"client_id": "screening-portal",
		"api_key":   "not-the-key",
	}))

	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	requireSecurityEvent(t, f.events, audit.EventAuthFailed)
}

func TestTokenMintingValidatesBody(t *testing.T) {
	f := newRouterFixture(t, nil)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]string{
		"client_id": "screening-portal",
	}))

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestTokenEndpointDisabledWithoutKeyHash(t *testing.T) {
	f := newRouterFixture(t, func(deps *Deps) {
		deps.APIKeyHash = ""
	})

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]string{
		"client_id": "screening-portal",
		"api_key":   "anything",
	}))

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestAuthGuardRejectsAndAudits(t *testing.T) {
	f := newRouterFixture(t, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/screening/evaluate", evaluatePayload())
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	event := requireSecurityEvent(t, f.events, audit.EventAuthFailed)
	assert.Contains(t, event.UserAgent, "Chrome/120.0.0.0", "the raw agent is kept for forensics")
	assert.Contains(t, event.ClientApp, "Chrome", "the parsed agent summary rides on security events")
	assert.NotEmpty(t, event.IP)
}

func TestAuthDisabledServesAnonymously(t *testing.T) {
	f := newRouterFixture(t, func(deps *Deps) {
		deps.RequireAuth = false
	})

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/screening/evaluate", evaluatePayload()))

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONHasKey(t, rr, "evaluation_id")
}

func TestAdminGuard(t *testing.T) {
	f := newRouterFixture(t, nil)

	t.Run("rejects a wrong token and audits it", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/admin/screening/evaluations")
		req.Header.Set("X-Admin-Token", "wrong")

		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		requireSecurityEvent(t, f.events, audit.EventAdminTokenRejected)
	})

	t.Run("serves the listing with the configured token", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/admin/screening/evaluations")
		req.Header.Set("X-Admin-Token", "admin-token")

		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONHasKey(t, rr, "evaluations")
	})
}
