package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// PostRepository is a mock ports.PostRepository.
type PostRepository struct {
	mock.Mock
}

var _ ports.PostRepository = (*PostRepository)(nil)

// NewPostRepository registers AssertExpectations on cleanup.
func NewPostRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *PostRepository {
	m := &PostRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*domain.Post)

	return post, args.Error(1)
}

func (m *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *PostRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PostRepository) List(ctx context.Context, limit int, after *ports.PostCursor) (*ports.PostPage, error) {
	args := m.Called(ctx, limit, after)
	page, _ := args.Get(0).(*ports.PostPage)

	return page, args.Error(1)
}

func (m *PostRepository) SaveVotes(ctx context.Context, id string, votes *domain.Votable, expectedVersion *int64) error {
	return m.Called(ctx, id, votes, expectedVersion).Error(0)
}

// CommentRepository is a mock ports.CommentRepository.
type CommentRepository struct {
	mock.Mock
}

var _ ports.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository registers AssertExpectations on cleanup.
func NewCommentRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CommentRepository {
	m := &CommentRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Comment)

	return c, args.Error(1)
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	list, _ := args.Get(0).([]domain.Comment)

	return list, args.Error(1)
}

func (m *CommentRepository) SaveVotes(ctx context.Context, id string, votes *domain.Votable, expectedVersion *int64) error {
	return m.Called(ctx, id, votes, expectedVersion).Error(0)
}

// ProfileRepository is a mock ports.ProfileRepository.
type ProfileRepository struct {
	mock.Mock
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository registers AssertExpectations on cleanup.
func NewProfileRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProfileRepository {
	m := &ProfileRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.HealthProfile, error) {
	args := m.Called(ctx, username)
	p, _ := args.Get(0).(*domain.HealthProfile)

	return p, args.Error(1)
}

func (m *ProfileRepository) Upsert(ctx context.Context, profile *domain.HealthProfile) error {
	return m.Called(ctx, profile).Error(0)
}
