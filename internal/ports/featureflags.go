package ports

import "context"

// Feature flag names.
const (
	// FlagNutritionAdvice appends nutrition advice to recommendations for
	// users whose goals mention food or diet.
	FlagNutritionAdvice = "nutrition_advice"

	// FlagClassifierCache caches classifier answers per profile digest.
	FlagClassifierCache = "classifier_cache"
)

// FeatureFlags evaluates runtime switches. The default is returned when the
// flag is unknown.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
}
