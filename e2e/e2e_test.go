package e2e

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/cucumber/godog"
)

// TestFeatures runs the screening scenarios against the server named by
// VERISCREEN_E2E_URL. Skips when no server is reachable so the suite can
// live alongside unit tests.
func TestFeatures(t *testing.T) {
	tc := NewTestContext()
	if !serverUp(tc.baseURL) {
		t.Skipf("no server reachable at %s, skipping e2e", tc.baseURL)
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return c, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Output:   os.Stdout,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("e2e scenarios failed")
	}
}

func serverUp(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
