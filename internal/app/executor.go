package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
)

// Writes that change stored state run as Validate → Perform → Verify →
// Archive → Respond. Nothing is persisted until Verify accepts the result of
// Perform, so a bad computation never reaches storage.

// ExecutionStep names a stage of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the step an operation failed in. It unwraps to the
// cause so domain.IsNotFound and friends still work.
type ExecutionError struct {
	Step  ExecutionStep
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Cause)
}

// Unwrap returns the cause.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation is a state-changing use case. Perform computes the new state P
// without side effects; Verify checks it; Archive stores it; Respond shapes
// the caller's result. Nil steps are skipped.
type Operation[I, P, O any] struct {
	Name     string
	Validate func(ctx context.Context, in I) error
	Perform  func(ctx context.Context, in I) (P, error)
	Verify   func(ctx context.Context, in I, performed P) error
	Archive  func(ctx context.Context, in I, performed P) error
	Respond  func(ctx context.Context, in I, performed P) (O, error)
}

// Execute runs op under a span named after it.
func Execute[I, P, O any](ctx context.Context, op Operation[I, P, O], in I) (O, error) {
	var (
		zero      O
		performed P
	)

	ctx, span := telemetry.Tracer().Start(ctx, "app."+op.Name)
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step ExecutionStep, err error) (O, error) {
		logger.Log(ctx, failureLevel(step, err), "operation step failed", slog.String("step", string(step)), slog.Any("error", err))
		span.SetAttributes(attribute.String("app.failed_step", string(step)))
		span.SetStatus(codes.Error, err.Error())

		return zero, &ExecutionError{Step: step, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, in); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, in); err != nil {
			return fail(StepPerform, err)
		}
	}

	if op.Verify != nil {
		if err := op.Verify(ctx, in, performed); err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, in, performed); err != nil {
			return fail(StepArchive, err)
		}
	}

	if op.Respond == nil {
		return zero, nil
	}

	out, err := op.Respond(ctx, in, performed)
	if err != nil {
		return fail(StepRespond, err)
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}

// failureLevel keeps rejected input and lost optimistic-lock races out of
// ERROR; callers retry or report those.
func failureLevel(step ExecutionStep, err error) slog.Level {
	switch {
	case step == StepValidate:
		return slog.LevelWarn
	case step == StepArchive && domain.IsConflict(err):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// FailedStep extracts the step from an ExecutionError anywhere in err's chain.
func FailedStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
