package flags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/wellness-service/internal/ports"
)

var _ ports.FeatureFlags = (*Static)(nil)

func TestStatic_IsEnabled(t *testing.T) {
	ctx := context.Background()
	f := NewStatic(map[string]bool{
		"Nutrition_Advice": false,
		"classifier_cache": true,
	})

	assert.False(t, f.IsEnabled(ctx, ports.FlagNutritionAdvice, true))
	assert.True(t, f.IsEnabled(ctx, ports.FlagClassifierCache, false))
	assert.True(t, f.IsEnabled(ctx, "unknown", true))
	assert.False(t, f.IsEnabled(ctx, "unknown", false))
}

func TestStatic_Set(t *testing.T) {
	ctx := context.Background()
	f := NewStatic(nil)

	f.Set(ports.FlagNutritionAdvice, false)
	assert.False(t, f.IsEnabled(ctx, ports.FlagNutritionAdvice, true))

	f.Set(ports.FlagNutritionAdvice, true)
	assert.True(t, f.IsEnabled(ctx, ports.FlagNutritionAdvice, false))
}
