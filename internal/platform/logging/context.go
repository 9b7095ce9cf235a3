package logging

import (
	"context"
	"log/slog"
)

// Attribute keys carried by request-scoped loggers.
const (
	KeyRequestID     = "request_id"
	KeyCorrelationID = "correlation_id"
	KeyUsername      = "username"
)

type loggerKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger stored by WithContext or With. A nil or bare
// context yields the process default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}

	return defaultLogger
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// With returns a context whose logger also emits attrs. Empty string values
// are dropped so an absent caller does not log username="".
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, 0, len(attrs))

	for _, a := range attrs {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			continue
		}

		args = append(args, a)
	}

	if len(args) == 0 {
		return ctx
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

// SetDefault replaces both the fallback logger and slog's default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
