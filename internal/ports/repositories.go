// Package ports defines the interfaces the application layer depends on.
// Adapters in internal/adapters implement them.
//
// Conventions:
//   - context.Context comes first
//   - domain types in and out, never storage models
//   - failures use domain errors (ErrNotFound, ErrConflict, ...)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// PostPage is one newest-first slice of posts.
type PostPage struct {
	Posts []domain.Post

	// HasMore is true when older posts exist after the last one returned.
	HasMore bool
}

// PostCursor positions a listing after a given post.
type PostCursor struct {
	CreatedAt time.Time
	ID        string
}

// PostRepository persists posts and their vote state.
type PostRepository interface {
	// Create stores a new post. Returns domain.ErrConflict if the ID exists.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID returns domain.ErrNotFound if the post does not exist.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// Update replaces title, description, categories and tags.
	Update(ctx context.Context, post *domain.Post) error

	// Delete removes the post and its comments.
	Delete(ctx context.Context, id string) error

	// List returns up to limit posts, newest first, strictly after cursor when given.
	List(ctx context.Context, limit int, after *PostCursor) (*PostPage, error)

	// SaveVotes writes vote sets and score. When expectedVersion is non-nil the
	// write only succeeds if the stored version still matches, otherwise it
	// returns domain.ErrConflict. The stored version is incremented either way.
	SaveVotes(ctx context.Context, id string, votes *domain.Votable, expectedVersion *int64) error
}

// CommentRepository persists comments and their vote state.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
	SaveVotes(ctx context.Context, id string, votes *domain.Votable, expectedVersion *int64) error
}

// ProfileRepository persists health profiles keyed by username.
type ProfileRepository interface {
	// GetByUsername returns domain.ErrNotFound when the user has no profile.
	GetByUsername(ctx context.Context, username string) (*domain.HealthProfile, error)

	// Upsert creates or replaces the profile.
	Upsert(ctx context.Context, profile *domain.HealthProfile) error
}
