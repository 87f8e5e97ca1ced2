package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 8 << 10

// errorResponse accepts both {"error":{"message":..}} and {"message":..}.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *errorResponse) message() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// parseErrorMessage extracts a message from an error body, or "".
func parseErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	var resp errorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&resp); err != nil {
		return ""
	}

	return resp.message()
}

// MapHTTPError translates a client failure or a non-2xx response into a
// domain error. It returns nil for 2xx responses.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, operation+": no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	reason := fmt.Sprintf("%s: status %d", operation, resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		reason = operation + ": rate limit exceeded"
	case http.StatusUnauthorized, http.StatusForbidden:
		reason = operation + ": rejected credentials"
	}

	if msg := parseErrorMessage(resp.Body); msg != "" {
		reason += ": " + msg
	}

	return domain.NewUnavailableError(serviceName, reason)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, operation+": circuit breaker open")
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s: %v", operation, err))
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}
