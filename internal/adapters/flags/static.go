// Package flags implements ports.FeatureFlags from configuration.
package flags

import (
	"context"
	"strings"
	"sync"
)

// Static serves flags loaded at startup. Values can be overridden at runtime
// with Set, which tests and the admin CLI use.
type Static struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewStatic copies values into a new flag set. Names are matched case-insensitively.
func NewStatic(values map[string]bool) *Static {
	s := &Static{flags: make(map[string]bool, len(values))}
	for name, on := range values {
		s.flags[normalize(name)] = on
	}

	return s
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	on, ok := s.flags[normalize(flag)]
	if !ok {
		return defaultValue
	}

	return on
}

// Set overrides a flag.
func (s *Static) Set(flag string, on bool) {
	s.mu.Lock()
	s.flags[normalize(flag)] = on
	s.mu.Unlock()
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
