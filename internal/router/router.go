package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bugtracker/internal/config"
	"github.com/monocle-dev/bugtracker/internal/handlers"
	"github.com/monocle-dev/bugtracker/internal/middleware"
	"github.com/monocle-dev/bugtracker/internal/types"
	"github.com/rs/zerolog"
)

type Deps struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Handlers *handlers.Handlers
	Tokens   middleware.TokenVerifier
	Users    middleware.UserLookup
	// Static is the browser client served under /app/. Optional.
	Static fs.FS
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()

	// ClientIP keys the auth rate limiter, so forwarded headers are only
	// honored from configured proxies.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		deps.Logger.Error().Err(err).Msg("invalid trusted proxies, ignoring forwarded headers")
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RequestID(), middleware.RequestLogger(deps.Logger))
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered interface{}) {
		zerolog.Ctx(ctx.Request.Context()).Error().Interface("panic", recovered).Msg("recovered from panic")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.MessageResponse{Message: types.MessageServerError})
	}))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := deps.Handlers
	requireAuth := middleware.AuthMiddleware(deps.Tokens, deps.Users)
	limiter := middleware.NewIPRateLimiter(deps.Config.AuthRateLimit, deps.Config.AuthRateBurst)

	r.GET("/health", handlers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/register", limiter.Middleware(), h.Register)
		auth.POST("/login", limiter.Middleware(), h.Login)
		auth.GET("/me", requireAuth, h.Me)
	}

	projects := r.Group("/projects", requireAuth)
	{
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListMyProjects)
		projects.GET("/all", h.ListAllProjects)
		projects.PATCH("/:id", h.UpdateProject)
		projects.POST("/:id/join", h.JoinProject)
		projects.POST("/:id/testers", h.AddTester)
	}

	bugs := r.Group("/bugs", requireAuth)
	{
		bugs.POST("", h.ReportBug)
		bugs.GET("", h.ListMyBugs)
		bugs.GET("/project/:projectId", h.ListProjectBugs)
		bugs.PATCH("/:id/assign", h.AssignBug)
		bugs.PATCH("/:id/resolve", h.ResolveBug)
	}

	r.GET("/external/github/repo", requireAuth, h.GitHubRepo)

	r.GET("/ws/projects/:id", requireAuth, h.ProjectFeed)

	if deps.Static != nil {
		r.StaticFS("/app", http.FS(deps.Static))
		r.GET("/", func(ctx *gin.Context) {
			ctx.Redirect(http.StatusFound, "/app/")
		})
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, types.MessageResponse{Message: "Not found"})
	})

	return r
}
