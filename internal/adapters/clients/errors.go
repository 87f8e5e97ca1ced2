// Package clients provides the instrumented HTTP client used to reach the
// remote quote source.
package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// Transport-level failures. Callers translate these into domain errors.
var (
	// ErrCircuitOpen means the breaker rejected the request without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError reports a response status that was treated as a failed attempt.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
