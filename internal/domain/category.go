package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// Recommendation categories.
const (
	CategoryNutrition       = "Nutrition"
	CategoryMentalHealth    = "Mental Health"
	CategoryExercise        = "Exercise"
	CategoryChronicDiseases = "Chronic Diseases"
	CategoryHealthyLiving   = "Healthy Living"
)

// ErrUnparseableReply is returned when classifier output is neither a JSON
// array nor an object with a categories array.
var ErrUnparseableReply = errors.New("classifier reply is not a category list")

// Categories returns the fixed category vocabulary in display order.
func Categories() []string {
	return []string{
		CategoryNutrition,
		CategoryMentalHealth,
		CategoryExercise,
		CategoryChronicDiseases,
		CategoryHealthyLiving,
	}
}

// FilterCategories keeps labels that name a known category, in vocabulary
// order, spelled canonically and without duplicates.
func FilterCategories(labels []string) []string {
	present := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		present[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}

	out := []string{}

	for _, c := range Categories() {
		if _, ok := present[strings.ToLower(c)]; ok {
			out = append(out, c)
		}
	}

	return out
}

// ParseCategoryReply decodes raw classifier text. Markdown code fences are
// tolerated; anything other than ["..."] or {"categories": ["..."]} is an error.
func ParseCategoryReply(raw string) ([]string, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, ErrUnparseableReply
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Categories *[]string `json:"categories"`
	}

	if err := json.Unmarshal([]byte(text), &wrapped); err != nil || wrapped.Categories == nil {
		return nil, ErrUnparseableReply
	}

	return *wrapped.Categories, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop a language hint such as ```json
		s = s[nl+1:]
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
