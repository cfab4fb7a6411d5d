package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"instructor-backend/internal/aiverify"
	"instructor-backend/internal/applications"
	"instructor-backend/internal/documents"
	"instructor-backend/internal/instructors"
	"instructor-backend/internal/reviews"
	"instructor-backend/internal/shared/config"
	"instructor-backend/internal/shared/metrics"
	"instructor-backend/internal/shared/server/middleware"
	"instructor-backend/internal/shared/server/respond"
	"instructor-backend/internal/uploads"
	"instructor-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Bootstrap builds them;
// tests can inject partial sets.
type RouterDeps struct {
	Config              config.Config
	UsersHandler        *users.Handler
	ApplicationsHandler *applications.Handler
	AdminHandler        *applications.AdminHandler
	DocumentsHandler    *documents.Handler
	ReviewsHandler      *reviews.Handler
	VerifyHandler       *aiverify.Handler
	InstructorsHandler  *instructors.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(writeRateLimits()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ApplicationsHandler != nil {
		deps.ApplicationsHandler.RegisterRoutes(api)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.InstructorsHandler != nil {
		deps.InstructorsHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	if deps.AdminHandler != nil {
		deps.AdminHandler.RegisterRoutes(admin)
	}
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterAdminRoutes(admin)
	}
	if deps.ReviewsHandler != nil {
		deps.ReviewsHandler.RegisterRoutes(admin)
	}
	if deps.VerifyHandler != nil {
		deps.VerifyHandler.RegisterRoutes(admin)
	}

	return r
}

const (
	rateGroupDraftWrites = "DRAFT_WRITES"
	rateGroupPresign     = "PRESIGN"
)

// writeRateLimits throttles the chatty owner-side writes: draft autosaves and
// presigned upload requests. Everything else passes through unmetered.
func writeRateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDraftWrites: {Rate: 5, Burst: 20},
			rateGroupPresign:     {Rate: 1, Burst: 10},
		},
		GroupFor: func(c *gin.Context) string {
			switch {
			case c.Request.Method == http.MethodPut && strings.HasSuffix(c.FullPath(), "/draft"):
				return rateGroupDraftWrites
			case strings.HasSuffix(c.FullPath(), "/uploads/presign"):
				return rateGroupPresign
			}
			return ""
		},
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
