package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// The storage adapter and the category classifier register one each at startup.
type HealthChecker interface {
	// Name identifies the component in readiness output.
	Name() string

	// Check returns nil when the component is usable.
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function into a HealthChecker.
type CheckerFunc struct {
	CheckerName string
	Fn          func(ctx context.Context) error
}

// Name implements HealthChecker.
func (f CheckerFunc) Name() string { return f.CheckerName }

// Check implements HealthChecker.
func (f CheckerFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	// Register adds a checker whose failure makes the service unhealthy.
	Register(checker HealthChecker) error

	// RegisterOptional adds a checker whose failure only degrades the service.
	// Recommendations keep working without the classifier, so it is optional.
	RegisterOptional(checker HealthChecker) error

	// CheckAll runs every checker concurrently under ctx.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Optional bool          `json:"optional,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

type registration struct {
	checker  HealthChecker
	optional bool
}

// DefaultHealthRegistry is a thread-safe HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []registration
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{checkers: make([]registration, 0)}
}

// Register implements HealthRegistry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	return r.add(checker, false)
}

// RegisterOptional implements HealthRegistry.
func (r *DefaultHealthRegistry) RegisterOptional(checker HealthChecker) error {
	return r.add(checker, true)
}

func (r *DefaultHealthRegistry) add(checker HealthChecker, optional bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, reg := range r.checkers {
		if reg.checker.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, registration{checker: checker, optional: optional})

	return nil
}

// CheckAll implements HealthRegistry. A failing required checker makes the
// result unhealthy; a failing optional one makes it degraded unless something
// required also failed.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	regs := make([]registration, len(r.checkers))
	copy(regs, r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(regs)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, reg := range regs {
		wg.Add(1)

		go func(reg registration) {
			defer wg.Done()

			start := time.Now()
			err := reg.checker.Check(ctx)

			cr := &CheckResult{
				Status:   HealthStatusHealthy,
				Optional: reg.optional,
				Duration: time.Since(start),
			}

			if err != nil {
				cr.Status = HealthStatusUnhealthy
				cr.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[reg.checker.Name()] = cr

			if err == nil {
				return
			}

			switch {
			case !reg.optional:
				result.Status = HealthStatusUnhealthy
			case result.Status == HealthStatusHealthy:
				result.Status = HealthStatusDegraded
			}
		}(reg)
	}

	wg.Wait()

	return result
}
