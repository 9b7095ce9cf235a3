package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/mocks"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newPostService(t *testing.T) (*PostService, *mocks.PostRepository, *mocks.CommentRepository) {
	t.Helper()

	posts := mocks.NewPostRepository(t)
	comments := mocks.NewCommentRepository(t)

	return NewPostService(PostServiceConfig{
		Posts:    posts,
		Comments: comments,
		Clock:    func() time.Time { return fixedNow },
		NewID:    func() string { return "id-1" },
	}), posts, comments
}

func TestPostService_Create_SuggestsTags(t *testing.T) {
	svc, posts, _ := newPostService(t)

	posts.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.ID == "id-1" && p.Author == "alice" && p.CreatedAt.Equal(fixedNow)
	})).Return(nil)

	post, err := svc.Create(context.Background(), "alice", domain.PostDraft{
		Title:       "  Balanced meal ideas ",
		Description: "High protein recipes for athletes",
	})
	require.NoError(t, err)

	assert.Equal(t, "Balanced meal ideas", post.Title)
	assert.Subset(t, post.Tags, []string{"meal-planning", "protein", "recipes"})
	assert.Equal(t, 0, post.Votes.Score)
}

func TestPostService_Create_KeepsManualTags(t *testing.T) {
	svc, posts, _ := newPostService(t)
	posts.On("Create", mock.Anything, mock.Anything).Return(nil)

	post, err := svc.Create(context.Background(), "alice", domain.PostDraft{
		Title:       "Healthy vegetable recipe",
		Description: "Roasted carrots",
		Tags:        []string{" sides ", "sides", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sides"}, post.Tags)
}

func TestPostService_Create_Validation(t *testing.T) {
	svc, _, _ := newPostService(t)

	_, err := svc.Create(context.Background(), "alice", domain.PostDraft{Description: "no title"})
	assert.True(t, domain.IsValidation(err))
}

func TestPostService_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPageSize},
		{-3, DefaultPageSize},
		{7, 7},
		{1000, MaxPageSize},
	}

	for _, tt := range tests {
		svc, posts, _ := newPostService(t)
		posts.On("List", mock.Anything, tt.want, (*ports.PostCursor)(nil)).Return(&ports.PostPage{}, nil).Once()

		_, err := svc.List(context.Background(), tt.in, nil)
		require.NoError(t, err)
	}
}

func TestPostService_Update(t *testing.T) {
	draft := domain.PostDraft{Title: "Fruit smoothies", Description: "Blend and go", Categories: "Nutrition"}

	t.Run("author updates and tags are re-suggested", func(t *testing.T) {
		svc, posts, _ := newPostService(t)
		posts.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Author: "alice", Tags: []string{"old"}}, nil)
		posts.On("Update", mock.Anything, mock.Anything).Return(nil)

		post, err := svc.Update(context.Background(), "p1", "alice", draft)
		require.NoError(t, err)
		assert.Equal(t, "Fruit smoothies", post.Title)
		assert.Contains(t, post.Tags, "fruits")
		assert.NotContains(t, post.Tags, "old")
		assert.True(t, post.UpdatedAt.Equal(fixedNow))
	})

	t.Run("someone else is forbidden", func(t *testing.T) {
		svc, posts, _ := newPostService(t)
		posts.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Author: "alice"}, nil)

		_, err := svc.Update(context.Background(), "p1", "mallory", draft)
		assert.True(t, domain.IsForbidden(err))
	})

	t.Run("anonymous posts are open", func(t *testing.T) {
		svc, posts, _ := newPostService(t)
		posts.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Author: AnonymousUser}, nil)
		posts.On("Update", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Update(context.Background(), "p1", "bob", draft)
		assert.NoError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		svc, posts, _ := newPostService(t)
		posts.On("GetByID", mock.Anything, "p1").Return(nil, domain.NewNotFoundError("post", "p1"))

		_, err := svc.Update(context.Background(), "p1", "alice", draft)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestPostService_Delete(t *testing.T) {
	svc, posts, _ := newPostService(t)
	posts.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1", Author: "alice"}, nil)
	posts.On("Delete", mock.Anything, "p1").Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "p1", "alice"))
	assert.True(t, domain.IsForbidden(svc.Delete(context.Background(), "p1", "bob")))
}

func TestPostService_Comments(t *testing.T) {
	svc, posts, comments := newPostService(t)

	posts.On("GetByID", mock.Anything, "p1").Return(&domain.Post{ID: "p1"}, nil)
	posts.On("GetByID", mock.Anything, "gone").Return(nil, domain.NewNotFoundError("post", "gone"))
	comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.PostID == "p1" && c.Content == "Nice tips" && c.Author == "bob"
	})).Return(nil)
	comments.On("ListByPost", mock.Anything, "p1").Return([]domain.Comment{{ID: "id-1"}}, nil)

	comment, err := svc.AddComment(context.Background(), "p1", "bob", " Nice tips ")
	require.NoError(t, err)
	assert.Equal(t, "id-1", comment.ID)

	_, err = svc.AddComment(context.Background(), "p1", "bob", "   ")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.AddComment(context.Background(), "gone", "bob", "hello")
	assert.True(t, domain.IsNotFound(err))

	list, err := svc.Comments(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostService_Retag(t *testing.T) {
	svc, posts, _ := newPostService(t)

	posts.On("GetByID", mock.Anything, "untagged").Return(&domain.Post{ID: "untagged", Title: "Vitamin guide"}, nil)
	posts.On("GetByID", mock.Anything, "tagged").Return(&domain.Post{ID: "tagged", Title: "Vitamin guide", Tags: []string{"x"}}, nil)
	posts.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.ID == "untagged" && assert.ObjectsAreEqual([]string{"vitamins"}, p.Tags)
	})).Return(nil).Once()

	changed, err := svc.Retag(context.Background(), "untagged")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Retag(context.Background(), "tagged")
	require.NoError(t, err)
	assert.False(t, changed)
}
