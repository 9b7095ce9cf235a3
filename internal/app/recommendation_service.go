package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// Recommendation defaults.
const (
	DefaultClassifierTimeout = 10 * time.Second
	DefaultCandidateLimit    = 100
)

// RecommendationSet is the response to a recommendation request.
type RecommendationSet struct {
	Username        string
	Categories      []string
	Recommendations []domain.Recommendation

	// Advice is empty unless the profile mentions nutrition.
	Advice string
}

// RecommendationServiceConfig wires a RecommendationService. Classifier,
// Cache, Flags and Metrics are optional.
type RecommendationServiceConfig struct {
	Profiles          ports.ProfileRepository
	Posts             ports.PostRepository
	Classifier        ports.CategoryClassifier
	Cache             ports.Cache
	Flags             ports.FeatureFlags
	Metrics           *telemetry.DomainMetrics
	ClassifierTimeout time.Duration
	CandidateLimit    int
}

// RecommendationService picks posts that fit a user's health profile.
type RecommendationService struct {
	profiles       ports.ProfileRepository
	posts          ports.PostRepository
	classifier     ports.CategoryClassifier
	cache          ports.Cache
	flags          ports.FeatureFlags
	metrics        *telemetry.DomainMetrics
	timeout        time.Duration
	candidateLimit int
}

// NewRecommendationService panics when a repository is missing.
func NewRecommendationService(cfg RecommendationServiceConfig) *RecommendationService {
	if cfg.Profiles == nil || cfg.Posts == nil {
		panic("app: recommendation service needs profile and post repositories")
	}

	svc := &RecommendationService{
		profiles:       cfg.Profiles,
		posts:          cfg.Posts,
		classifier:     cfg.Classifier,
		cache:          cfg.Cache,
		flags:          cfg.Flags,
		metrics:        cfg.Metrics,
		timeout:        cfg.ClassifierTimeout,
		candidateLimit: cfg.CandidateLimit,
	}

	if svc.timeout <= 0 {
		svc.timeout = DefaultClassifierTimeout
	}

	if svc.candidateLimit <= 0 {
		svc.candidateLimit = DefaultCandidateLimit
	}

	return svc
}

// Recommend loads the profile and the newest candidate posts concurrently,
// asks the classifier which categories matter and returns the matching posts.
// Classifier trouble yields an empty list, not an error.
func (s *RecommendationService) Recommend(ctx context.Context, username string) (*RecommendationSet, error) {
	profile, page, err := Parallel2(ctx,
		func(ctx context.Context) (*domain.HealthProfile, error) {
			return s.profiles.GetByUsername(ctx, username)
		},
		func(ctx context.Context) (*ports.PostPage, error) {
			return s.posts.List(ctx, s.candidateLimit, nil)
		},
	)
	if err != nil {
		return nil, err
	}

	categories := s.RelevantCategories(ctx, profile)

	set := &RecommendationSet{
		Username:        profile.Username,
		Categories:      categories,
		Recommendations: domain.MatchRecommendations(page.Posts, categories),
	}

	if s.isEnabled(ctx, ports.FlagNutritionAdvice) && domain.IsNutritionInterested(profile) {
		set.Advice = domain.NutritionAdvice
	}

	s.metrics.RecommendationsServed(len(set.Recommendations))

	return set, nil
}

// RelevantCategories returns the known categories the classifier judged
// relevant to profile, in vocabulary order. It never fails: an unreachable
// classifier, a timeout or an unparseable reply all give an empty slice.
func (s *RecommendationService) RelevantCategories(ctx context.Context, profile *domain.HealthProfile) []string {
	logger := logging.FromContext(ctx)

	summary := profile.Summary()
	if summary.IsEmpty() {
		return []string{}
	}

	if s.classifier == nil {
		s.metrics.Classification(telemetry.ClassifierDisabled)
		return []string{}
	}

	useCache := s.cache != nil && s.isEnabled(ctx, ports.FlagClassifierCache)
	key := "categories:" + summary.Digest()

	if useCache {
		if cached, ok := s.cached(ctx, key); ok {
			s.metrics.Classification(telemetry.ClassifierCacheHit)
			return cached
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	labels, err := s.classifier.Classify(callCtx, summary)
	if err != nil {
		outcome := telemetry.ClassifierFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			outcome = telemetry.ClassifierTimeout
		}

		s.metrics.Classification(outcome)
		logger.WarnContext(ctx, "category classification failed, recommending nothing",
			slog.String("outcome", outcome),
			slog.Any("error", err),
		)

		return []string{}
	}

	categories := domain.FilterCategories(labels)
	if dropped := len(labels) - len(categories); dropped > 0 {
		logger.DebugContext(ctx, "discarded unknown categories", slog.Int("dropped", dropped))
	}

	s.metrics.Classification(telemetry.ClassifierOK)

	if useCache && len(categories) > 0 {
		if raw, err := json.Marshal(categories); err == nil {
			if err := s.cache.Set(ctx, key, raw); err != nil {
				logger.DebugContext(ctx, "caching categories failed", slog.Any("error", err))
			}
		}
	}

	return categories
}

func (s *RecommendationService) cached(ctx context.Context, key string) ([]string, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}

	return domain.FilterCategories(labels), true
}

func (s *RecommendationService) isEnabled(ctx context.Context, flag string) bool {
	if s.flags == nil {
		return true
	}

	return s.flags.IsEnabled(ctx, flag, true)
}
