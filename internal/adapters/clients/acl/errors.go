package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/wellness-service/internal/adapters/clients"
	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// statusOverloaded is the non-standard status LLM APIs send when saturated.
const statusOverloaded = 529

// ErrorResponse is the error envelope returned by the messages API:
//
//	{"type":"error","error":{"type":"rate_limit_error","message":"..."}}
//
// A flat {"message":"..."} body is accepted too.
type ErrorResponse struct {
	Type    string      `json:"type"`
	Error   ErrorDetail `json:"error"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail carries the upstream error type and message.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GetMessage prefers the nested message.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse decodes an error body, or returns nil when the body is
// empty or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" && errResp.Error.Type == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError converts a client failure or a non-2xx response into a domain
// error. Upstream credential and quota problems are this service's problem,
// not the caller's, so they surface as UnavailableError.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		if msg := errResp.GetMessage(); msg != "" {
			message = msg
		}
	}

	switch status := resp.StatusCode; {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.NewUnavailableError(serviceName, "credentials rejected: "+message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case status == statusOverloaded, status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, operation)
	default:
		return domain.NewValidationError(operation, message)
	}
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}
