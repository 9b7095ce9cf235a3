package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// ProfileService reads and writes health profiles.
type ProfileService struct {
	profiles ports.ProfileRepository
	now      func() time.Time
}

// NewProfileService panics when profiles is nil.
func NewProfileService(profiles ports.ProfileRepository) *ProfileService {
	if profiles == nil {
		panic("app: profile service needs a profile repository")
	}

	return &ProfileService{
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the profile for username.
func (s *ProfileService) Get(ctx context.Context, username string) (*domain.HealthProfile, error) {
	return s.profiles.GetByUsername(ctx, username)
}

// Upsert replaces the profile of username. An identified caller may only
// write their own profile.
func (s *ProfileService) Upsert(ctx context.Context, caller string, profile *domain.HealthProfile) (*domain.HealthProfile, error) {
	profile.Username = strings.TrimSpace(profile.Username)
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if caller != AnonymousUser && caller != profile.Username {
		return nil, domain.NewForbiddenError("update health profile", "profiles can only be changed by their owner")
	}

	stored := &domain.HealthProfile{
		Username:      profile.Username,
		CurrentStatus: strings.TrimSpace(profile.CurrentStatus),
		Conditions:    domain.NormalizeTags(profile.Conditions),
		Goals:         domain.NormalizeTags(profile.Goals),
		UpdatedAt:     s.now(),
	}

	if err := s.profiles.Upsert(ctx, stored); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "health profile saved",
		slog.Int("conditions", len(stored.Conditions)),
		slog.Int("goals", len(stored.Goals)),
	)

	return stored, nil
}
