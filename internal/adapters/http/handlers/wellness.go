package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/wellness-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/wellness-service/internal/app"
)

// WellnessHandler serves health profiles and the recommendations built from them.
type WellnessHandler struct {
	profiles        *app.ProfileService
	recommendations *app.RecommendationService
}

// NewWellnessHandler creates a wellness handler.
func NewWellnessHandler(profiles *app.ProfileService, recommendations *app.RecommendationService) *WellnessHandler {
	return &WellnessHandler{profiles: profiles, recommendations: recommendations}
}

// RegisterRoutes mounts the /health routes.
func (h *WellnessHandler) RegisterRoutes(rg *gin.RouterGroup, write gin.HandlerFunc) {
	health := rg.Group("/health")
	health.GET("/profile/:username", h.GetProfile)
	health.PUT("/profile/:username", write, h.PutProfile)
	health.GET("/recommendations/:username", h.Recommendations)
}

// GetProfile handles GET /health/profile/:username.
func (h *WellnessHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

// PutProfile handles PUT /health/profile/:username.
func (h *WellnessHandler) PutProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.Upsert(c.Request.Context(), middleware.Caller(c), req.Profile(c.Param("username")))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProfileResponse(profile))
}

// Recommendations handles GET /health/recommendations/:username. Classifier
// trouble never fails the request; it yields no categories instead.
func (h *WellnessHandler) Recommendations(c *gin.Context) {
	set, err := h.recommendations.Recommend(c.Request.Context(), c.Param("username"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecommendationsResponse(set))
}
