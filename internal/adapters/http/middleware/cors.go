package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/wellness-service/internal/platform/config"
)

// CORS allows browser clients from the configured origins. The ID headers
// are exposed so clients can report them.
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Accept", "Authorization", "Content-Type", defaultSubjectHeader, HeaderRequestID, HeaderCorrelationID,
		},
		ExposeHeaders:    []string{"Content-Length", HeaderRequestID, HeaderCorrelationID},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
