package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockShopify is a scripted mock Admin GraphQL endpoint for tests that need
// a real HTTP server (transport tests, integration tests). Responses are
// served in the order they were enqueued; an unscripted request gets a 500.
type MockShopify struct {
	server *httptest.Server

	mu        sync.Mutex
	responses []ScriptResponse
	calls     []ScriptCall
}

// NewMockShopify creates a mock server preloaded with the given responses.
func NewMockShopify(responses ...ScriptResponse) *MockShopify {
	mock := &MockShopify{responses: responses}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.Unmarshal(body, &payload)

		headers := map[string]string{
			"X-Shopify-Access-Token": r.Header.Get("X-Shopify-Access-Token"),
			"Content-Type":           r.Header.Get("Content-Type"),
		}

		mock.mu.Lock()
		mock.calls = append(mock.calls, ScriptCall{
			URL:       r.URL.Path,
			Headers:   headers,
			Query:     payload.Query,
			Variables: payload.Variables,
		})
		var resp ScriptResponse
		if len(mock.responses) > 0 {
			resp = mock.responses[0]
			mock.responses = mock.responses[1:]
		} else {
			resp = ScriptResponse{StatusCode: http.StatusInternalServerError, Body: `{"errors":[{"message":"unscripted request"}]}`}
		}
		mock.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write([]byte(resp.Body))
	}))

	return mock
}

// URL returns the mock server URL, usable as a session's shop URL.
func (m *MockShopify) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockShopify) Close() {
	m.server.Close()
}

// Enqueue appends another scripted response.
func (m *MockShopify) Enqueue(resp ScriptResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// RequestCount returns the number of requests received.
func (m *MockShopify) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockShopify) Calls() []ScriptCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]ScriptCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}
