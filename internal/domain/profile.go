package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// HealthProfile is the self-reported health context of a user.
type HealthProfile struct {
	Username      string
	CurrentStatus string
	Conditions    []string
	Goals         []string
	UpdatedAt     time.Time
}

// Validate checks the profile can be stored.
func (p *HealthProfile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return NewValidationError("username", "is required")
	}

	return nil
}

// ProfileSummary is the slice of a profile sent to the category classifier.
type ProfileSummary struct {
	CurrentStatus string
	Conditions    []string
	Goals         []string
}

// Summary extracts the fields the classifier needs.
func (p *HealthProfile) Summary() ProfileSummary {
	return ProfileSummary{
		CurrentStatus: strings.TrimSpace(p.CurrentStatus),
		Conditions:    NormalizeTags(p.Conditions),
		Goals:         NormalizeTags(p.Goals),
	}
}

// IsEmpty reports whether there is nothing to classify.
func (s ProfileSummary) IsEmpty() bool {
	return s.CurrentStatus == "" && len(s.Conditions) == 0 && len(s.Goals) == 0
}

// Digest is a stable key for caching classification of this summary.
func (s ProfileSummary) Digest() string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(s.CurrentStatus)))

	for _, part := range [][]string{s.Conditions, s.Goals} {
		h.Write([]byte{0})

		for _, item := range part {
			h.Write([]byte(strings.ToLower(item)))
			h.Write([]byte{'\n'})
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// nutritionKeywords is wider than the tag list because it reads goals, not articles.
var nutritionKeywords = []string{
	"nutrition",
	"diet",
	"food",
	"meal",
	"eating",
	"weight",
	"healthy eating",
	"balanced diet",
	"nutrients",
	"vitamin",
	"protein",
	"calorie",
	"vegetable",
	"fruit",
}

// NutritionAdvice is appended to recommendations for nutrition-minded users.
const NutritionAdvice = "Your goals mention nutrition. Browse posts tagged healthy-eating and meal-planning for practical ideas."

// IsNutritionInterested reports whether the goals or current status mention nutrition.
func IsNutritionInterested(p *HealthProfile) bool {
	if p == nil {
		return false
	}

	texts := make([]string, 0, len(p.Goals)+1)
	texts = append(texts, p.Goals...)
	texts = append(texts, p.CurrentStatus)

	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, kw := range nutritionKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}

	return false
}
