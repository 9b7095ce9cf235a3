package domain

import (
	"strings"
	"time"
)

// Post is a community article that can be tagged, commented on and voted.
type Post struct {
	ID          string
	Author      string
	Title       string
	Description string

	// Categories is the free-form category line entered by the author,
	// e.g. "Nutrition, Healthy Living".
	Categories string
	Tags       []string
	Votes      Votable
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Comment is a reply to a post. Comments carry their own votes.
type Comment struct {
	ID        string
	PostID    string
	Author    string
	Content   string
	Votes     Votable
	CreatedAt time.Time
}

// PostDraft is the author-supplied content of a post on create or update.
type PostDraft struct {
	Title       string
	Description string
	Categories  string
	Tags        []string
}

// Validate checks the draft has the fields every post needs.
func (d *PostDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewValidationError("title", "is required")
	}

	if strings.TrimSpace(d.Description) == "" {
		return NewValidationError("description", "is required")
	}

	return nil
}

// ResolveTags returns the author's tags when any were given, otherwise tags
// inferred from the draft text.
func (d *PostDraft) ResolveTags() []string {
	if manual := NormalizeTags(d.Tags); len(manual) > 0 {
		return manual
	}

	return SuggestTags(d.Title, d.Description, d.Categories)
}

// NormalizeTags trims, drops blanks and removes duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}

		if _, dup := seen[t]; dup {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
