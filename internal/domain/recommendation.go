package domain

import "strings"

const (
	// RelevanceScore is given to every matching post. There is no graded ranking.
	RelevanceScore = 100

	// MaxRecommendations caps the recommendation list.
	MaxRecommendations = 5
)

// Recommendation is a post selected for a user with the reason it was picked.
type Recommendation struct {
	Post              Post
	RelevanceScore    int
	Reasoning         string
	MatchedCategories []string
}

// MatchRecommendations selects posts whose tags or category line mention one
// of the relevant categories. Matching is a case-insensitive substring test.
// Input order is kept and at most MaxRecommendations are returned.
func MatchRecommendations(posts []Post, relevant []string) []Recommendation {
	out := []Recommendation{}
	if len(relevant) == 0 {
		return out
	}

	for i := range posts {
		matched := matchedCategories(&posts[i], relevant)
		if len(matched) == 0 {
			continue
		}

		out = append(out, Recommendation{
			Post:              posts[i],
			RelevanceScore:    RelevanceScore,
			Reasoning:         "Matches your interest in " + strings.Join(matched, ", "),
			MatchedCategories: matched,
		})

		if len(out) == MaxRecommendations {
			break
		}
	}

	return out
}

func matchedCategories(p *Post, relevant []string) []string {
	categories := strings.ToLower(p.Categories)

	lowerTags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		lowerTags[i] = strings.ToLower(t)
	}

	var matched []string

	for _, c := range relevant {
		needle := strings.ToLower(c)
		if needle == "" {
			continue
		}

		if strings.Contains(categories, needle) || anyContains(lowerTags, needle) {
			matched = append(matched, c)
		}
	}

	return matched
}

func anyContains(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}

	return false
}
