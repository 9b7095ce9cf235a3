package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageQuery holds the listing query parameters.
type PageQuery struct {
	// Cursor is the opaque NextCursor of a previous page.
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit"  validate:"omitempty,gte=1,lte=100"`
}

// PaginatedResponse is one page of items.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// postCursor is the wire form of ports.PostCursor.
type postCursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// EncodePostCursor makes an opaque cursor positioned after the given post.
func EncodePostCursor(createdAt time.Time, id string) string {
	raw, err := json.Marshal(postCursor{CreatedAt: createdAt.UTC(), ID: id})
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodePostCursor reverses EncodePostCursor. An empty string means the first
// page and yields nil.
func DecodePostCursor(encoded string) (*ports.PostCursor, error) {
	if encoded == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var pc postCursor
	if err := json.Unmarshal(raw, &pc); err != nil || pc.ID == "" || pc.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}

	return &ports.PostCursor{CreatedAt: pc.CreatedAt, ID: pc.ID}, nil
}
