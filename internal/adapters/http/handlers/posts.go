package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/wellness-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/wellness-service/internal/app"
	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// PostHandler serves posts, their comments and votes on both.
type PostHandler struct {
	posts *app.PostService
	votes *app.VoteService
}

// NewPostHandler creates a post handler.
func NewPostHandler(posts *app.PostService, votes *app.VoteService) *PostHandler {
	return &PostHandler{posts: posts, votes: votes}
}

// RegisterRoutes mounts the post and comment routes. write guards every
// route that changes state.
func (h *PostHandler) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	post := rg.Group("/post")
	post.GET("", h.List)
	post.GET("/:id", h.Get)
	post.GET("/:id/comment", h.ListComments)
	post.POST("", write, h.Create)
	post.PUT("/:id", write, h.Update)
	post.DELETE("/:id", write, h.Delete)
	post.POST("/:id/comment", write, h.AddComment)
	post.POST("/vote/:id", write, h.VotePost)

	rg.POST("/comment/vote/:id", write, h.VoteComment)
}

// Create handles POST /post.
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.PostRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.Caller(c), req.Draft())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewPostResponse(post))
}

// List handles GET /post, newest first.
func (h *PostHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !dto.BindQuery(c, &q) {
		return
	}

	after, err := dto.DecodePostCursor(q.Cursor)
	if err != nil {
		dto.Abort(c, dto.ErrorCodeBadRequest, "invalid cursor")
		return
	}

	page, err := h.posts.List(c.Request.Context(), q.Limit, after)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPostPageResponse(page.Posts, page.HasMore))
}

// Get handles GET /post/:id.
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPostResponse(post))
}

// Update handles PUT /post/:id.
func (h *PostHandler) Update(c *gin.Context) {
	var req dto.PostRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	post, err := h.posts.Update(c.Request.Context(), c.Param("id"), middleware.Caller(c), req.Draft())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPostResponse(post))
}

// Delete handles DELETE /post/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), middleware.Caller(c)); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddComment handles POST /post/:id/comment.
func (h *PostHandler) AddComment(c *gin.Context) {
	var req dto.CommentRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), middleware.Caller(c), req.Content)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCommentResponse(comment))
}

// ListComments handles GET /post/:id/comment.
func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.posts.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCommentListResponse(comments))
}

// VotePost handles POST /post/vote/:id.
func (h *PostHandler) VotePost(c *gin.Context) {
	h.vote(c, h.votes.VotePost)
}

// VoteComment handles POST /comment/vote/:id.
func (h *PostHandler) VoteComment(c *gin.Context) {
	h.vote(c, h.votes.VoteComment)
}

type voteFunc func(ctx context.Context, id, voter, voteType string) (*app.VoteResult, error)

func (h *PostHandler) vote(c *gin.Context, apply voteFunc) {
	var req dto.VoteRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	// A verified caller may only vote as themselves.
	if c.GetBool(middleware.ContextKeyAuthenticated) && strings.TrimSpace(req.Username) != middleware.Caller(c) {
		dto.HandleError(c, domain.NewForbiddenError("vote", "username does not match the authenticated user"))
		return
	}

	result, err := apply(c.Request.Context(), c.Param("id"), req.Username, req.VoteType)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVoteResponse(result))
}
