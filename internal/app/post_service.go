package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// AnonymousUser authors content when the caller is not identified. Anyone may
// edit anonymous posts.
const AnonymousUser = "anonymous"

// Listing limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PostServiceConfig wires a PostService.
type PostServiceConfig struct {
	Posts    ports.PostRepository
	Comments ports.CommentRepository

	// Clock and NewID are replaced in tests.
	Clock func() time.Time
	NewID func() string
}

// PostService manages posts and their comments.
type PostService struct {
	posts    ports.PostRepository
	comments ports.CommentRepository
	now      func() time.Time
	newID    func() string
}

// NewPostService panics when a repository is missing.
func NewPostService(cfg PostServiceConfig) *PostService {
	if cfg.Posts == nil || cfg.Comments == nil {
		panic("app: post service needs post and comment repositories")
	}

	svc := &PostService{
		posts:    cfg.Posts,
		comments: cfg.Comments,
		now:      cfg.Clock,
		newID:    cfg.NewID,
	}

	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}

	if svc.newID == nil {
		svc.newID = uuid.NewString
	}

	return svc
}

// Create stores a new post by author. When the draft carries no tags they
// are suggested from the title, description and categories.
func (s *PostService) Create(ctx context.Context, author string, draft domain.PostDraft) (*domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	post := &domain.Post{
		ID:          s.newID(),
		Author:      author,
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Categories:  strings.TrimSpace(draft.Categories),
		Tags:        draft.ResolveTags(),
		Votes:       domain.NewVotable(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.Int("tags", len(post.Tags)),
	)

	return post, nil
}

// Get returns one post.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// List returns a newest-first page. limit is clamped to [1, MaxPageSize]
// with DefaultPageSize for zero.
func (s *PostService) List(ctx context.Context, limit int, after *ports.PostCursor) (*ports.PostPage, error) {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	return s.posts.List(ctx, limit, after)
}

// Update replaces the content of a post. Only its author may change it.
// Tags are re-suggested when the draft has none.
func (s *PostService) Update(ctx context.Context, id, caller string, draft domain.PostDraft) (*domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := checkOwner(post.Author, caller, "update post"); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(draft.Title)
	post.Description = strings.TrimSpace(draft.Description)
	post.Categories = strings.TrimSpace(draft.Categories)
	post.Tags = draft.ResolveTags()
	post.UpdatedAt = s.now()

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Delete removes a post and its comments. Only its author may delete it.
func (s *PostService) Delete(ctx context.Context, id, caller string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := checkOwner(post.Author, caller, "delete post"); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "post deleted", slog.String("post_id", id))

	return nil
}

// AddComment attaches a comment to an existing post.
func (s *PostService) AddComment(ctx context.Context, postID, author, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content", "is required")
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        s.newID(),
		PostID:    postID,
		Author:    author,
		Content:   content,
		Votes:     domain.NewVotable(),
		CreatedAt: s.now(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// Comments lists a post's comments, oldest first.
func (s *PostService) Comments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	return s.comments.ListByPost(ctx, postID)
}

// Retag recomputes suggested tags for a post that has none. It reports
// whether the post changed.
func (s *PostService) Retag(ctx context.Context, id string) (bool, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	if len(domain.NormalizeTags(post.Tags)) > 0 {
		return false, nil
	}

	tags := domain.SuggestTags(post.Title, post.Description, post.Categories)
	if len(tags) == 0 {
		return false, nil
	}

	post.Tags = tags
	post.UpdatedAt = s.now()

	if err := s.posts.Update(ctx, post); err != nil {
		return false, err
	}

	return true, nil
}

func checkOwner(owner, caller, operation string) error {
	if owner == AnonymousUser || owner == caller {
		return nil
	}

	return domain.NewForbiddenError(operation, "only the author can do this")
}
