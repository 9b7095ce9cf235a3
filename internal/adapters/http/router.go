package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/wellness-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/wellness-service/internal/platform/config"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
)

// RouterConfig carries what SetupRouter mounts. Nil handlers are skipped.
type RouterConfig struct {
	ServiceName string
	Auth        *config.AuthConfig
	CORS        *config.CORSConfig

	// Timeout bounds /api/v1 requests. Zero disables it.
	Timeout time.Duration

	Health   *handlers.HealthHandler
	Posts    *handlers.PostHandler
	Wellness *handlers.WellnessHandler
}

// SetupRouter installs the middleware chain and routes:
//
//	Recovery → RequestID → CorrelationID → otel tracing and metrics → Logging
//	[→ CORS]
//	/-/     probes, build info, prometheus metrics
//	/api/v1 Authenticate → Timeout → handlers (writes behind RequireAuth)
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging())

	if cfg.CORS != nil && cfg.CORS.Enabled {
		engine.Use(middleware.CORS(cfg.CORS))
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(engine)
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.Authenticate(cfg.Auth))

	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	write := middleware.RequireAuth(cfg.Auth)

	if cfg.Posts != nil {
		cfg.Posts.RegisterRoutes(api, write)
	}

	if cfg.Wellness != nil {
		cfg.Wellness.RegisterRoutes(api, write)
	}
}
