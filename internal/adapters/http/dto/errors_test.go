package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/wellness-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:     http.StatusNotFound,
		ErrorCodeConflict:     http.StatusConflict,
		ErrorCodeValidation:   http.StatusBadRequest,
		ErrorCodeBadRequest:   http.StatusBadRequest,
		ErrorCodeForbidden:    http.StatusForbidden,
		ErrorCodeUnauthorized: http.StatusUnauthorized,
		ErrorCodeUnavailable:  http.StatusServiceUnavailable,
		ErrorCodeTimeout:      http.StatusServiceUnavailable,
		ErrorCodeInternal:     http.StatusInternalServerError,
		"SOMETHING_ELSE":      http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestGetTraceID(t *testing.T) {
	t.Run("gin key wins over header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("X-Request-ID", "req-1")
		c.Set("trace_id", "trace-1")

		assert.Equal(t, "trace-1", GetTraceID(c))
	})

	t.Run("falls back to request id header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("X-Request-ID", "req-1")

		assert.Equal(t, "req-1", GetTraceID(c))
	})

	t.Run("empty without any source", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Empty(t, GetTraceID(c))
	})
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "not found",
			err:         domain.NewNotFoundError("post", "p1"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: `post "p1" not found`,
		},
		{
			name:        "validation keeps field detail",
			err:         domain.NewValidationError("voteType", "must be upvote or downvote"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "voteType: must be upvote or downvote",
			wantDetails: map[string]string{"voteType": "must be upvote or downvote"},
		},
		{
			name:        "wrapped conflict",
			err:         fmt.Errorf("archive: %w", domain.NewConflictError("post", "version changed")),
			wantStatus:  http.StatusConflict,
			wantCode:    ErrorCodeConflict,
			wantMessage: "post: version changed",
		},
		{
			name:        "forbidden",
			err:         domain.NewForbiddenError("delete post", "only the author can do this"),
			wantStatus:  http.StatusForbidden,
			wantCode:    ErrorCodeForbidden,
			wantMessage: "delete post: only the author can do this",
		},
		{
			name:        "unauthorized",
			err:         domain.NewUnauthorizedError("token expired"),
			wantStatus:  http.StatusUnauthorized,
			wantCode:    ErrorCodeUnauthorized,
			wantMessage: "authentication failed: token expired",
		},
		{
			name:        "unavailable hides dependency detail",
			err:         domain.NewUnavailableError("database", "dial tcp refused"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "a dependency is temporarily unavailable",
		},
		{
			name:        "bare sentinel",
			err:         fmt.Errorf("lookup: %w", domain.ErrNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: "resource not found",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("list posts: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeTimeout,
			wantMessage: "request timeout exceeded",
		},
		{
			name:        "unknown error is internal",
			err:         errors.New("pq: relation does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("X-Request-ID", "req-42")

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
			assert.Equal(t, "req-42", body.TraceID)
		})
	}
}

func TestAbort(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Abort(c, ErrorCodeTimeout, "request timeout exceeded")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":{"code":"TIMEOUT","message":"request timeout exceeded"}}`, w.Body.String())
}
