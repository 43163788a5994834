package amp

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the provider reports that a workspace does
// not exist.
var ErrNotFound = errors.New("workspace not found")

// APIError is a non-2xx response from the provider. The body is carried
// verbatim for diagnosis; no attempt is made to parse it into a structured
// error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aps api error: status %d: %s", e.StatusCode, e.Body)
}

// TransportError is a network-level failure (DNS, connection refused,
// timeout) before any provider response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
