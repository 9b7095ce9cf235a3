package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/wellness-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
)

// Timeout puts a deadline on the request context. Handlers run on the
// request goroutine and are expected to honour ctx; when the deadline passed
// and nothing was written, a 503 TIMEOUT body is sent.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		logging.FromContext(ctx).WarnContext(ctx, "request timeout",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Duration("timeout", timeout),
		)

		dto.Abort(c, dto.ErrorCodeTimeout, "request timeout exceeded")
	}
}
