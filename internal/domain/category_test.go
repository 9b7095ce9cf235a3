package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryReply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "array", raw: `["Nutrition","Exercise"]`, want: []string{"Nutrition", "Exercise"}},
		{name: "object", raw: `{"categories": ["Mental Health"]}`, want: []string{"Mental Health"}},
		{name: "fenced", raw: "```json\n[\"Healthy Living\"]\n```", want: []string{"Healthy Living"}},
		{name: "empty array", raw: `[]`, want: []string{}},
		{name: "not json", raw: "not valid json", wantErr: true},
		{name: "blank", raw: "   ", wantErr: true},
		{name: "object without categories", raw: `{"labels": ["Nutrition"]}`, wantErr: true},
		{name: "array of numbers", raw: `[1, 2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategoryReply(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnparseableReply)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterCategories(t *testing.T) {
	got := FilterCategories([]string{"exercise", "Finance", "Nutrition", " nutrition ", "Mental Health", "Crypto"})
	assert.Equal(t, []string{CategoryNutrition, CategoryMentalHealth, CategoryExercise}, got)

	assert.Empty(t, FilterCategories(nil))
	assert.Empty(t, FilterCategories([]string{"Finance"}))
}

func TestFilterCategories_NeverLeavesVocabulary(t *testing.T) {
	vocab := map[string]bool{}
	for _, c := range Categories() {
		vocab[c] = true
	}

	inputs := [][]string{
		{"Finance", "Nutrition"},
		{"HEALTHY LIVING", "healthy living", "Sleep"},
		{"Chronic Diseases", "Chronic"},
	}

	for i, in := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			for _, c := range FilterCategories(in) {
				assert.True(t, vocab[c], "unexpected label %q", c)
			}
		})
	}
}

func TestIsNutritionInterested(t *testing.T) {
	tests := []struct {
		name    string
		profile *HealthProfile
		want    bool
	}{
		{"nil profile", nil, false},
		{"weight goal", &HealthProfile{Goals: []string{"Lose Weight"}}, true},
		{"balanced diet", &HealthProfile{Goals: []string{"keep a balanced diet"}}, true},
		{"status mentions nutrients", &HealthProfile{CurrentStatus: "low on nutrients"}, true},
		{"conditions are ignored", &HealthProfile{Conditions: []string{"food allergy"}}, false},
		{"unrelated", &HealthProfile{Goals: []string{"run a marathon"}, CurrentStatus: "fit"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNutritionInterested(tt.profile))
		})
	}
}

func TestProfileSummary_Digest(t *testing.T) {
	a := (&HealthProfile{CurrentStatus: "Tired", Goals: []string{"sleep"}}).Summary()
	b := (&HealthProfile{CurrentStatus: " tired ", Goals: []string{"Sleep", ""}}).Summary()
	c := (&HealthProfile{CurrentStatus: "tired", Conditions: []string{"sleep"}}).Summary()

	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
	assert.True(t, (&HealthProfile{}).Summary().IsEmpty())
}
