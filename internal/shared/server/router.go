package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/imports"
	"career-backend/internal/interview"
	"career-backend/internal/prep"
	"career-backend/internal/profile"
	"career-backend/internal/records"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/server/middleware"
	"career-backend/internal/shared/server/respond"
	"career-backend/internal/suggestions"
	"career-backend/internal/tailoring"
)

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are
// skipped.
type RouterDeps struct {
	Config      config.Config
	Records     []*records.Handler
	Suggestions []*suggestions.Handler
	Imports     *imports.Handler
	Tailoring   *tailoring.Handler
	Prep        *prep.Handler
	Interviews  *interview.Handler
	Profile     *profile.Handler
	GoogleAuth  *profile.GoogleSignIn
	// Health reports readiness details; nil means always ready. A payload
	// with "ok": false answers 503.
	Health func(ctx context.Context) map[string]any
	// Limiter is shared by the default and AI rate limit rules.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(),
	)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	defaultLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]middleware.RateLimitRule{
			middleware.DefaultRateLimitGroup: {Rate: cfg.RateLimitDefaultRate, Burst: cfg.RateLimitDefaultBurst},
		},
	})
	aiLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:      limiter,
		DefaultGroup: middleware.AIRateLimitGroup,
		Rules: map[string]middleware.RateLimitRule{
			middleware.AIRateLimitGroup: {Rate: cfg.RateLimitAIRate, Burst: cfg.RateLimitAIBurst},
		},
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		body := deps.Health(c.Request.Context())
		status := http.StatusOK
		if ok, _ := body["ok"].(bool); !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	})

	api.Use(defaultLimit)
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Profile != nil {
		deps.Profile.RegisterRoutes(api)
	}
	for _, h := range deps.Records {
		h.RegisterRoutes(api)
	}
	for _, h := range deps.Suggestions {
		h.RegisterRoutes(api, aiLimit)
	}
	if deps.Imports != nil {
		deps.Imports.RegisterRoutes(api, aiLimit)
	}
	if deps.Tailoring != nil {
		deps.Tailoring.RegisterRoutes(api, aiLimit)
	}
	if deps.Prep != nil {
		deps.Prep.RegisterRoutes(api, aiLimit)
	}
	if deps.Interviews != nil {
		deps.Interviews.RegisterRoutes(api, aiLimit)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
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
