// Package transport defines the minimal HTTP capability the GraphQL client
// depends on, plus a production implementation with transport-level retry.
//
// The client core never retries connect errors, 5xx, or 429 itself; that is
// the transport's job. HTTPTransport handles it with exponential backoff and
// jitter, so the core only ever reacts to the rate-limit signal embedded in
// a successful GraphQL response.
package transport

import (
	"context"
)

// Response is the outcome of one HTTP round trip.
type Response struct {
	// StatusCode is the final HTTP status after any transport-level retries.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

// Transport issues HTTP POST requests on behalf of the client. A transport
// failure (connect/read error, retries exhausted) is returned as an error;
// any received response, whatever its status, is returned as a Response.
//
// Implementations must be safe for concurrent use.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error)
}
