// Package testutil provides testing utilities for the Shopify GraphQL client.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Sternrassler/shopify-gql-client/pkg/transport"
)

// ScriptResponse is one canned transport outcome.
type ScriptResponse struct {
	StatusCode int
	Body       string
	// Err, when set, is returned instead of a response (transport failure).
	Err error
}

// ScriptCall records one request the transport received.
type ScriptCall struct {
	URL       string
	Headers   map[string]string
	Query     string
	Variables map[string]any
}

// ScriptTransport replays canned responses in order and records every call.
// It implements transport.Transport with zero network involvement.
type ScriptTransport struct {
	mu        sync.Mutex
	responses []ScriptResponse
	calls     []ScriptCall
}

// NewScriptTransport creates a transport that will serve the given
// responses in order.
func NewScriptTransport(responses ...ScriptResponse) *ScriptTransport {
	return &ScriptTransport{responses: responses}
}

// Enqueue appends another canned response.
func (t *ScriptTransport) Enqueue(resp ScriptResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses = append(t.responses, resp)
}

// Post implements transport.Transport.
func (t *ScriptTransport) Post(_ context.Context, url string, headers map[string]string, body []byte) (*transport.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var payload struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	_ = json.Unmarshal(body, &payload)
	t.calls = append(t.calls, ScriptCall{
		URL:       url,
		Headers:   headers,
		Query:     payload.Query,
		Variables: payload.Variables,
	})

	if len(t.responses) == 0 {
		return nil, fmt.Errorf("no scripted response for request %d", len(t.calls))
	}
	resp := t.responses[0]
	t.responses = t.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &transport.Response{
		StatusCode: resp.StatusCode,
		Body:       []byte(resp.Body),
	}, nil
}

// Calls returns a copy of the recorded calls.
func (t *ScriptTransport) Calls() []ScriptCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	calls := make([]ScriptCall, len(t.calls))
	copy(calls, t.calls)
	return calls
}

// CallCount returns the number of requests received.
func (t *ScriptTransport) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
