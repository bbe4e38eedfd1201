//go:build e2e

package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jsonClient = &http.Client{Timeout: 5 * time.Second}

// httpJSON sends payload (if any) as a JSON body and returns the raw response.
func httpJSON(method, url string, payload any, headers map[string]string) (*http.Response, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return jsonClient.Do(req)
}

// Check inspects a decoded response body.
type Check func(t *testing.T, body map[string]any)

// Step is one request in a scripted scenario.
type Step struct {
	Name   string
	Method string
	Path   string
	Body   any
	Token  string
	Status int
	Checks []Check
}

// Run executes s against baseURL and returns the decoded body.
func (s Step) Run(t *testing.T, baseURL string) map[string]any {
	t.Helper()
	t.Logf("step %q: %s %s", s.Name, s.Method, s.Path)

	var headers map[string]string
	if s.Token != "" {
		headers = authHeaders(s.Token)
	}
	resp, err := httpJSON(s.Method, baseURL+s.Path, s.Body, headers)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	assert.Equal(t, s.Status, resp.StatusCode, "step %q", s.Name)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body), "step %q", s.Name)
	for _, check := range s.Checks {
		check(t, body)
	}
	return body
}

// runSteps executes steps in order, returning each decoded body.
func runSteps(t *testing.T, baseURL string, steps ...Step) []map[string]any {
	t.Helper()
	out := make([]map[string]any, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Run(t, baseURL))
	}
	return out
}

func hasFields(fields ...string) Check {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		for _, f := range fields {
			require.Contains(t, body, f)
			require.NotEmpty(t, body[f], "field %q", f)
		}
	}
}

func errorContains(substr string) Check {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		msg, ok := body["error"].(string)
		require.True(t, ok, "error field missing in %v", body)
		assert.Contains(t, msg, substr)
	}
}

func errorKind(kind string) Check {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		assert.Equal(t, kind, body["kind"])
	}
}

func messageIs(want string) Check {
	return func(t *testing.T, body map[string]any) {
		t.Helper()
		assert.Equal(t, want, body["message"])
	}
}

func stringField(t *testing.T, body map[string]any, field string) string {
	t.Helper()
	v, ok := body[field].(string)
	require.True(t, ok, "%s should be a string", field)
	require.NotEmpty(t, v)
	return v
}

func credentials(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

// postStatus posts creds to path and reports only the status code.
func postStatus(t *testing.T, env *TestEnvironment, path string, body any) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := env.Client.Post(env.BaseURL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()
	return resp.StatusCode
}
