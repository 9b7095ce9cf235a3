package dto

import (
	"time"

	"github.com/jsamuelsen/wellness-service/internal/app"
	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// PostRequest is the body of post create and update.
type PostRequest struct {
	Title       string   `json:"title"       validate:"required,notblank,max=200"`
	Description string   `json:"description" validate:"required,notblank,max=20000"`
	Categories  string   `json:"categories"  validate:"max=500"`
	Tags        []string `json:"tags"        validate:"omitempty,max=20,dive,max=64"`
}

// Draft converts the request into domain input.
func (r *PostRequest) Draft() domain.PostDraft {
	return domain.PostDraft{
		Title:       r.Title,
		Description: r.Description,
		Categories:  r.Categories,
		Tags:        r.Tags,
	}
}

// PostResponse is a post as returned by the API.
type PostResponse struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Categories  string    `json:"categories"`
	Tags        []string  `json:"tags"`
	Upvotes     int       `json:"upvotes"`
	Downvotes   int       `json:"downvotes"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewPostResponse maps a post.
func NewPostResponse(p *domain.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return PostResponse{
		ID:          p.ID,
		Author:      p.Author,
		Title:       p.Title,
		Description: p.Description,
		Categories:  p.Categories,
		Tags:        tags,
		Upvotes:     p.Votes.Upvotes(),
		Downvotes:   p.Votes.Downvotes(),
		Score:       p.Votes.Score,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewPostPageResponse maps a listing page and builds its next cursor.
func NewPostPageResponse(posts []domain.Post, hasMore bool) PaginatedResponse[PostResponse] {
	items := make([]PostResponse, len(posts))
	for i := range posts {
		items[i] = NewPostResponse(&posts[i])
	}

	resp := PaginatedResponse[PostResponse]{Items: items, HasMore: hasMore}
	if hasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		resp.NextCursor = EncodePostCursor(last.CreatedAt, last.ID)
	}

	return resp
}

// CommentRequest is the body of comment create.
type CommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

// CommentResponse is a comment as returned by the API.
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    c.Author,
		Content:   c.Content,
		Upvotes:   c.Votes.Upvotes(),
		Downvotes: c.Votes.Downvotes(),
		Score:     c.Votes.Score,
		CreatedAt: c.CreatedAt,
	}
}

// NewCommentListResponse maps comments, never returning a null array.
func NewCommentListResponse(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = NewCommentResponse(&comments[i])
	}

	return out
}

// VoteRequest is the body of a post or comment vote.
type VoteRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100"`

	// VoteType is "upvote" or "downvote".
	VoteType string `json:"voteType" validate:"required"`
}

// VoteResponse reports the vote state after a toggle.
type VoteResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"postId,omitempty"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Score     int    `json:"score"`
	Message   string `json:"message"`
	Removed   bool   `json:"removed"`
}

// NewVoteResponse maps a vote result.
func NewVoteResponse(r *app.VoteResult) VoteResponse {
	return VoteResponse{
		ID:        r.ID,
		PostID:    r.PostID,
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		Score:     r.Score,
		Message:   r.Outcome.Message(),
		Removed:   r.Outcome.Removed,
	}
}
