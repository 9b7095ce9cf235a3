package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

const entityComment = "comment"

// CommentRepository implements ports.CommentRepository.
type CommentRepository struct {
	db *gorm.DB
}

var _ ports.CommentRepository = (*CommentRepository)(nil)

// Create implements ports.CommentRepository.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	m := toCommentModel(comment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return mapError(err, entityComment, comment.ID, "creating")
	}

	comment.CreatedAt = m.CreatedAt

	return nil
}

// GetByID implements ports.CommentRepository.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var m commentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapError(err, entityComment, id, "loading")
	}

	c := m.toDomain()

	return &c, nil
}

// ListByPost implements ports.CommentRepository, oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	var rows []commentModel

	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	out := make([]domain.Comment, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}

	return out, nil
}

// SaveVotes implements ports.CommentRepository.
func (r *CommentRepository) SaveVotes(ctx context.Context, id string, votes *domain.Votable, expectedVersion *int64) error {
	return saveVotes(ctx, r.db, &commentModel{}, entityComment, id, votes, expectedVersion)
}
