// Package dto holds the JSON shapes of the wellness API and the helpers that
// bind, validate and answer requests with them.
package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
)

// ErrorResponse is the envelope of every error body.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the machine and human readable part of an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Details maps field names to messages for validation failures.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "CONFLICT"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeBadRequest   = "BAD_REQUEST"
)

// NewErrorResponse creates an error body.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// NewErrorResponseWithDetails creates an error body with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets the trace ID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps an error code to its status.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeUnavailable, ErrorCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetTraceID returns the OpenTelemetry trace ID of the request, falling back
// to a "trace_id" gin key and then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if c.Request != nil {
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			return sc.TraceID().String()
		}
	}

	if id := c.GetString("trace_id"); id != "" {
		return id
	}

	if c.Request != nil {
		return c.GetHeader("X-Request-ID")
	}

	return ""
}

// MapError translates a domain error into a status and error body. Anything
// not recognised is a 500 with a generic message.
func MapError(err error) (int, *ErrorResponse) {
	var (
		notFound     *domain.NotFoundError
		conflict     *domain.ConflictError
		validation   *domain.ValidationError
		forbidden    *domain.ForbiddenError
		unauthorized *domain.UnauthorizedError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, notFound.Error())
	case errors.As(err, &validation):
		resp := NewErrorResponse(ErrorCodeValidation, validation.Error())
		if validation.Field != "" {
			resp.Error.Details = map[string]string{validation.Field: validation.Message}
		}

		return http.StatusBadRequest, resp
	case errors.As(err, &conflict):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, conflict.Error())
	case errors.As(err, &forbidden):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, forbidden.Error())
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, unauthorized.Error())
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, "resource not found")
	case domain.IsValidation(err):
		return http.StatusBadRequest, NewErrorResponse(ErrorCodeValidation, "request validation failed")
	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, "resource changed concurrently")
	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, "operation not permitted")
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, "authentication required")
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, "a dependency is temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")
	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleError writes err as an error body. 500s are logged with the cause
// since the body does not carry it.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"trace_id", resp.TraceID,
		)
	}

	c.AbortWithStatusJSON(status, resp)
}

// Abort stops the chain with an error body for code.
func Abort(c *gin.Context, code, message string) {
	resp := NewErrorResponse(code, message)
	resp.TraceID = GetTraceID(c)

	c.AbortWithStatusJSON(HTTPStatusFromCode(code), resp)
}

// AbortWithDetails stops the chain with a validation body.
func AbortWithDetails(c *gin.Context, code, message string, details map[string]string) {
	resp := NewErrorResponseWithDetails(code, message, details)
	resp.TraceID = GetTraceID(c)

	c.AbortWithStatusJSON(HTTPStatusFromCode(code), resp)
}
