package dto

import (
	"time"

	"github.com/jsamuelsen/wellness-service/internal/app"
	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// ProfileRequest is the body of a health profile upsert.
type ProfileRequest struct {
	CurrentStatus string   `json:"currentStatus" validate:"max=1000"`
	Conditions    []string `json:"conditions"    validate:"omitempty,max=50,dive,max=200"`
	Goals         []string `json:"goals"         validate:"omitempty,max=50,dive,max=200"`
}

// Profile converts the request into the profile of username.
func (r *ProfileRequest) Profile(username string) *domain.HealthProfile {
	return &domain.HealthProfile{
		Username:      username,
		CurrentStatus: r.CurrentStatus,
		Conditions:    r.Conditions,
		Goals:         r.Goals,
	}
}

// ProfileResponse is a health profile as returned by the API.
type ProfileResponse struct {
	Username      string    `json:"username"`
	CurrentStatus string    `json:"currentStatus"`
	Conditions    []string  `json:"conditions"`
	Goals         []string  `json:"goals"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProfileResponse maps a profile.
func NewProfileResponse(p *domain.HealthProfile) ProfileResponse {
	return ProfileResponse{
		Username:      p.Username,
		CurrentStatus: p.CurrentStatus,
		Conditions:    orEmpty(p.Conditions),
		Goals:         orEmpty(p.Goals),
		UpdatedAt:     p.UpdatedAt,
	}
}

// RecommendationResponse is one recommended post.
type RecommendationResponse struct {
	Post              PostResponse `json:"post"`
	RelevanceScore    int          `json:"relevanceScore"`
	Reasoning         string       `json:"reasoning"`
	MatchedCategories []string     `json:"matchedCategories"`
}

// RecommendationsResponse is the body of the recommendations route.
type RecommendationsResponse struct {
	Username        string                   `json:"username"`
	Categories      []string                 `json:"categories"`
	Recommendations []RecommendationResponse `json:"recommendations"`
	Advice          string                   `json:"advice,omitempty"`
}

// NewRecommendationsResponse maps a recommendation set.
func NewRecommendationsResponse(set *app.RecommendationSet) RecommendationsResponse {
	recs := make([]RecommendationResponse, len(set.Recommendations))
	for i := range set.Recommendations {
		r := &set.Recommendations[i]
		recs[i] = RecommendationResponse{
			Post:              NewPostResponse(&r.Post),
			RelevanceScore:    r.RelevanceScore,
			Reasoning:         r.Reasoning,
			MatchedCategories: orEmpty(r.MatchedCategories),
		}
	}

	return RecommendationsResponse{
		Username:        set.Username,
		Categories:      orEmpty(set.Categories),
		Recommendations: recs,
		Advice:          set.Advice,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
