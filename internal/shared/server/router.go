package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"candidate-insights/internal/dashboard"
	"candidate-insights/internal/insights"
	"candidate-insights/internal/services/health"
	"candidate-insights/internal/shared/config"
	"candidate-insights/internal/shared/metrics"
	"candidate-insights/internal/shared/server/middleware"
	"candidate-insights/internal/shared/server/respond"
)

// Rate limit groups.
const (
	groupDefault = "DEFAULT"
	groupGateway = "GATEWAY"
	groupPolling = "POLLING"
)

// RouterDeps carries the handlers mounted on the engine.
type RouterDeps struct {
	Config    config.Config
	Health    *health.Service
	Dashboard *dashboard.Handler
	Insights  *insights.Handler
	Limiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				groupDefault: {Rate: 10, Burst: 40},
				groupGateway: {Rate: 0.2, Burst: 5},
				groupPolling: {Rate: 5, Burst: 20},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterRoutes(api)
	}
	if deps.Insights != nil {
		deps.Insights.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

// rateLimitGroup puts gateway starts in a strict bucket and snapshot polling
// in a generous one.
func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/sessions/:sessionId/analysis", "/api/v1/sessions/:sessionId/prediction":
		if c.Request.Method == http.MethodPost {
			return groupGateway
		}
		return groupPolling
	default:
		return groupDefault
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
