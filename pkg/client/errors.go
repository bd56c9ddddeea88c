package client

import (
	"errors"
	"fmt"
	"strings"
)

// snippetLimit caps remote error text carried in error messages.
const snippetLimit = 300

// Common errors returned by the client.
var (
	// ErrThrottleRetryExhausted is returned (wrapped in ThrottleError) when
	// the API keeps answering THROTTLED after all retry attempts.
	ErrThrottleRetryExhausted = errors.New("throttled retry attempts exhausted")
)

// ErrorDetail is one GraphQL-level error object from the remote API.
type ErrorDetail struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns the error code from the extensions block, if any.
func (d ErrorDetail) Code() string {
	code, _ := d.Extensions["code"].(string)
	return code
}

// TransportError wraps a failure raised by the transport collaborator.
// The client does not retry it; transport-level retry already happened
// below this layer.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-200 response from the Admin API, including a malformed
// JSON body on an otherwise successful status.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, snippet(e.Body))
}

// GraphQLError is a response that carried errors with no usable data.
// The full ordered remote error list is preserved.
type GraphQLError struct {
	Errors []ErrorDetail
}

// Error implements the error interface.
func (e *GraphQLError) Error() string {
	messages := make([]string, len(e.Errors))
	for i, detail := range e.Errors {
		messages[i] = detail.Message
	}
	return fmt.Sprintf("graphql: %s", snippet(strings.Join(messages, "; ")))
}

// ThrottleError is a THROTTLED rejection from the API layer that survived
// the client's retry budget. Callers may want to back off differently than
// for a query error, so it is a distinct type.
type ThrottleError struct {
	Errors []ErrorDetail
	Err    error
}

// Error implements the error interface.
func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ThrottleError) Unwrap() error {
	return e.Err
}

// PathError means a connection path did not resolve against the actual
// response shape: a caller contract defect, always fatal to the call.
type PathError struct {
	Path []string
	Key  string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("connection path %v: cannot traverse key %q", e.Path, e.Key)
}

// PaginationError is a pagination protocol violation by the API, such as
// hasNextPage=true without an end cursor. Continuing would require guessing,
// so it is fatal.
type PaginationError struct {
	Reason string
}

// Error implements the error interface.
func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination: %s", e.Reason)
}

// isThrottled reports whether a remote error list is purely a THROTTLED
// rejection and therefore worth retrying after budget feedback.
func isThrottled(details []ErrorDetail) bool {
	if len(details) == 0 {
		return false
	}
	for _, detail := range details {
		if detail.Code() != "THROTTLED" {
			return false
		}
	}
	return true
}

// snippet truncates remote text so error messages stay readable.
func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit]
}
