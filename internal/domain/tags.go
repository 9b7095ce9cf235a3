package domain

import "strings"

// tagKeywords is scanned in order against post text.
var tagKeywords = []string{
	"nutrition",
	"food",
	"diet",
	"meal",
	"recipe",
	"healthy",
	"vegetable",
	"fruit",
	"protein",
	"vitamin",
	"mineral",
	"nutrient",
	"organic",
	"whole food",
}

// keywordTags renames matched keywords. Keywords without an entry are used as-is.
var keywordTags = map[string]string{
	"recipe":     "recipes",
	"eating":     "healthy-eating",
	"healthy":    "healthy-eating",
	"vegetable":  "vegetables",
	"fruit":      "fruits",
	"meal":       "meal-planning",
	"vitamin":    "vitamins",
	"mineral":    "minerals",
	"nutrient":   "nutrients",
	"whole food": "whole-foods",
}

// SuggestTags infers tags for a post from its text.
//
// It returns nil when both title and description are blank, whatever the
// category says. Output order follows the keyword list; callers should treat
// it as a set.
func SuggestTags(title, description, category string) []string {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(description) == "" {
		return nil
	}

	text := strings.ToLower(title + " " + description + " " + category)

	var tags []string

	seen := make(map[string]struct{})

	for _, kw := range tagKeywords {
		if !strings.Contains(text, kw) {
			continue
		}

		tag := kw
		if mapped, ok := keywordTags[kw]; ok {
			tag = mapped
		}

		if _, dup := seen[tag]; dup {
			continue
		}

		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return tags
}
