package ports

import (
	"context"

	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// CategoryClassifier judges which recommendation categories fit a profile.
// Implementations may return labels outside the fixed vocabulary; callers filter.
// Errors include unreachable upstream and unparseable replies.
type CategoryClassifier interface {
	Classify(ctx context.Context, summary domain.ProfileSummary) ([]string, error)
}

// Cache stores small byte values that expire after the cache's TTL.
type Cache interface {
	// Get returns domain.ErrNotFound on a miss or expired entry.
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
