package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestTags(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		category    string
		contains    []string
		excludes    []string
	}{
		{
			name:     "healthy vegetable recipe",
			title:    "Healthy vegetable recipe",
			contains: []string{"healthy-eating", "vegetables", "recipes"},
		},
		{
			name:        "balanced meal ideas",
			title:       "Balanced meal ideas",
			description: "High protein recipes for athletes",
			contains:    []string{"meal-planning", "protein", "recipes"},
			excludes:    []string{"meal", "recipe"},
		},
		{
			name:        "unmapped keywords pass through",
			title:       "Organic FOOD on a diet",
			description: "nutrition basics",
			contains:    []string{"organic", "food", "diet", "nutrition"},
		},
		{
			name:        "category contributes text",
			title:       "Weekly plan",
			description: "Shopping list",
			category:    "Whole food cooking",
			contains:    []string{"whole-foods", "food"},
		},
		{
			name:        "plurals still match",
			description: "Fruits, vitamins and minerals",
			contains:    []string{"fruits", "vitamins", "minerals"},
		},
		{
			name:        "no keywords",
			title:       "Morning run",
			description: "5k along the river",
			excludes:    []string{"food", "healthy-eating"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestTags(tt.title, tt.description, tt.category)

			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}

			for _, not := range tt.excludes {
				assert.NotContains(t, got, not)
			}
		})
	}
}

func TestSuggestTags_EmptyText(t *testing.T) {
	assert.Empty(t, SuggestTags("", "", ""))
	assert.Empty(t, SuggestTags("  ", "", "Nutrition"), "category alone must not produce tags")
}

func TestSuggestTags_Deduplicates(t *testing.T) {
	got := SuggestTags("Healthy healthy HEALTHY", "recipe recipe", "")

	counts := map[string]int{}
	for _, tag := range got {
		counts[tag]++
	}

	for tag, n := range counts {
		assert.Equal(t, 1, n, "tag %q repeated", tag)
	}
}

func TestSuggestTags_Deterministic(t *testing.T) {
	a := SuggestTags("Protein meal", "fruit and vegetable", "")
	b := SuggestTags("Protein meal", "fruit and vegetable", "")
	assert.Equal(t, a, b)
}

func TestPostDraft_ResolveTags(t *testing.T) {
	manual := PostDraft{Title: "Healthy recipe", Description: "x", Tags: []string{" mine ", "", "mine"}}
	assert.Equal(t, []string{"mine"}, manual.ResolveTags())

	inferred := PostDraft{Title: "Healthy recipe", Description: "x", Tags: []string{"  "}}
	assert.ElementsMatch(t, []string{"healthy-eating", "recipes"}, inferred.ResolveTags())
}

func TestPostDraft_Validate(t *testing.T) {
	assert.True(t, IsValidation((&PostDraft{Description: "d"}).Validate()))
	assert.True(t, IsValidation((&PostDraft{Title: "t"}).Validate()))
	assert.NoError(t, (&PostDraft{Title: "t", Description: "d"}).Validate())
}
