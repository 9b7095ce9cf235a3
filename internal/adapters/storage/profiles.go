package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

const entityProfile = "health profile"

// ProfileRepository implements ports.ProfileRepository.
type ProfileRepository struct {
	db *gorm.DB
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// GetByUsername implements ports.ProfileRepository.
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.HealthProfile, error) {
	var m profileModel
	if err := r.db.WithContext(ctx).First(&m, "username = ?", username).Error; err != nil {
		return nil, mapError(err, entityProfile, username, "loading")
	}

	return m.toDomain(), nil
}

// Upsert implements ports.ProfileRepository.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.HealthProfile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_status", "conditions", "goals", "updated_at"}),
	}).Create(toProfileModel(profile)).Error

	return mapError(err, entityProfile, profile.Username, "saving")
}
