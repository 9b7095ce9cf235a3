package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

const entityPost = "post"

// PostRepository implements ports.PostRepository.
type PostRepository struct {
	db *gorm.DB
}

var _ ports.PostRepository = (*PostRepository)(nil)

// Create implements ports.PostRepository.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	m := toPostModel(post)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return mapError(err, entityPost, post.ID, "creating")
	}

	post.CreatedAt = m.CreatedAt
	post.UpdatedAt = m.UpdatedAt

	return nil
}

// GetByID implements ports.PostRepository.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var m postModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapError(err, entityPost, id, "loading")
	}

	post := m.toDomain()

	return &post, nil
}

// Update implements ports.PostRepository. Vote columns are left alone.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	res := r.db.WithContext(ctx).Model(&postModel{}).Where("id = ?", post.ID).Updates(map[string]any{
		"title":       post.Title,
		"description": post.Description,
		"categories":  post.Categories,
		"tags":        stringArray(post.Tags),
		"updated_at":  post.UpdatedAt,
	})
	if res.Error != nil {
		return mapError(res.Error, entityPost, post.ID, "updating")
	}

	if res.RowsAffected == 0 {
		return domain.NewNotFoundError(entityPost, post.ID)
	}

	return nil
}

// Delete implements ports.PostRepository.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&commentModel{}).Error; err != nil {
			return mapError(err, "comment", id, "deleting")
		}

		res := tx.Delete(&postModel{}, "id = ?", id)
		if res.Error != nil {
			return mapError(res.Error, entityPost, id, "deleting")
		}

		if res.RowsAffected == 0 {
			return domain.NewNotFoundError(entityPost, id)
		}

		return nil
	})
}

// List implements ports.PostRepository. Posts are ordered by created_at then
// id, both descending, so the cursor is unambiguous.
func (r *PostRepository) List(ctx context.Context, limit int, after *ports.PostCursor) (*ports.PostPage, error) {
	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "must be positive")
	}

	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit + 1)
	if after != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}

	var rows []postModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	page := &ports.PostPage{Posts: make([]domain.Post, 0, min(len(rows), limit))}
	if len(rows) > limit {
		page.HasMore = true
		rows = rows[:limit]
	}

	for i := range rows {
		page.Posts = append(page.Posts, rows[i].toDomain())
	}

	return page, nil
}

// SaveVotes implements ports.PostRepository.
func (r *PostRepository) SaveVotes(ctx context.Context, id string, votes *domain.Votable, expectedVersion *int64) error {
	return saveVotes(ctx, r.db, &postModel{}, entityPost, id, votes, expectedVersion)
}

// saveVotes writes vote columns for a post or comment row. A zero-row update
// is a conflict when the row exists and not-found otherwise.
func saveVotes(ctx context.Context, db *gorm.DB, model any, entity, id string, votes *domain.Votable, expectedVersion *int64) error {
	q := db.WithContext(ctx).Model(model).Where("id = ?", id)
	if expectedVersion != nil {
		q = q.Where("version = ?", *expectedVersion)
	}

	res := q.Updates(map[string]any{
		"upvoters":   stringArray(votes.Upvoters.Sorted()),
		"downvoters": stringArray(votes.Downvoters.Sorted()),
		"score":      votes.Score,
		"version":    gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return mapError(res.Error, entity, id, "saving votes on")
	}

	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("checking %s: %w", entity, err)
	}

	if count == 0 {
		return domain.NewNotFoundError(entity, id)
	}

	return domain.NewConflictErrorWithDetails(entity, "version changed", id)
}
