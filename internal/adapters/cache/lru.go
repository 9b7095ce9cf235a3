// Package cache provides an in-process ports.Cache backed by an expirable LRU.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jsamuelsen/wellness-service/internal/domain"
)

const (
	// DefaultSize is used when a non-positive size is configured.
	DefaultSize = 1024

	// DefaultTTL is used when a non-positive TTL is configured.
	DefaultTTL = 15 * time.Minute
)

// LRU is a size-bounded cache whose entries expire after a fixed TTL.
// It is safe for concurrent use.
type LRU struct {
	entries *expirable.LRU[string, []byte]
}

// NewLRU creates a cache holding at most size entries for ttl each.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &LRU{entries: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get implements ports.Cache.
func (c *LRU) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.entries.Get(key)
	if !ok {
		return nil, domain.NewNotFoundError("cache entry", key)
	}

	return value, nil
}

// Set implements ports.Cache. The value is copied.
func (c *LRU) Set(_ context.Context, key string, value []byte) error {
	c.entries.Add(key, append([]byte(nil), value...))
	return nil
}

// Delete implements ports.Cache.
func (c *LRU) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len reports the number of live entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}
