// Package e2e drives black-box scenarios against a running veriscreen
// instance. Point VERISCREEN_E2E_URL at the server under test.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds shared state for one scenario: the HTTP client and the
// last response, which assertion steps inspect.
type TestContext struct {
	baseURL string
	client  *http.Client

	lastStatus int
	lastBody   map[string]any
}

// NewTestContext builds a context targeting VERISCREEN_E2E_URL, defaulting to
// a local dev server.
func NewTestContext() *TestContext {
	base := os.Getenv("VERISCREEN_E2E_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &TestContext{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
}

// POST sends a JSON body and records the response.
func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	resp, err := tc.client.Post(tc.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return tc.record(resp)
}

// GET fetches a path and records the response.
func (tc *TestContext) GET(path string) error {
	resp, err := tc.client.Get(tc.baseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return tc.record(resp)
}

func (tc *TestContext) record(resp *http.Response) error {
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("response is not a JSON object: %w", err)
		}
		tc.lastBody = body
	}
	return nil
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// ResponseField walks a dotted path into the last response body.
func (tc *TestContext) ResponseField(path string) (any, error) {
	var current any = tc.lastBody
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", path, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", path)
		}
	}
	return current, nil
}
