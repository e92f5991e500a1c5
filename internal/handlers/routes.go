package handlers

import (
	"github.com/alimgiray/crewledger/internal/metrics"
	"github.com/alimgiray/crewledger/internal/middleware"
	"github.com/alimgiray/crewledger/internal/services"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router needs
type Handlers struct {
	Auth          *AuthHandler
	Workers       *WorkerHandler
	Projects      *ProjectHandler
	Health        *HealthHandler
	Authenticator middleware.Authenticator
	CORSOrigin    string
	RatePerMinute int
	RateBurst     int
}

// NewRouter builds the gin engine with every route registered
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(h.CORSOrigin))

	SetupRoutes(router, h)
	return router
}

// SetupRoutes registers the API under /api/v1 plus /health and /metrics
func SetupRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		limited := auth.Group("")
		limited.Use(middleware.RateLimitMiddleware(h.RatePerMinute, h.RateBurst))
		limited.POST("/send-otp", h.Auth.SendOTP)
		limited.POST("/verify-otp", h.Auth.VerifyOTP)

		auth.GET("/self-identification", middleware.AuthRequired(h.Authenticator), h.Auth.SelfIdentification)
		auth.POST("/logout", h.Auth.Logout)
	}

	workers := api.Group("/workers")
	workers.Use(middleware.AuthRequired(h.Authenticator))
	{
		workers.POST("", h.Workers.AddWorker)
		workers.GET("", h.Workers.ListWorkers)
		workers.GET("/:id", h.Workers.GetWorker)
		workers.PATCH("/:id", h.Workers.UpdateWorker)
		workers.DELETE("/:id", h.Workers.DeleteWorker)
		workers.GET("/:id/github", h.Workers.GitHubProfile)
	}

	projects := api.Group("/projects")
	projects.Use(middleware.AuthRequired(h.Authenticator))
	{
		projects.POST("", h.Projects.CreateProject)
		projects.GET("", h.Projects.ListProjects)
		projects.GET("/summary", h.Projects.ProjectSummary)
		projects.GET("/:id", h.Projects.GetProject)
		projects.PATCH("/:id", h.Projects.UpdateProject)
		projects.DELETE("/:id", h.Projects.DeleteProject)
		projects.PATCH("/:id/workers/:workerId", h.Projects.UpdateAssignment)
		projects.GET("/:id/export", h.Projects.ExportProject)
	}

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

var _ middleware.Authenticator = (*services.AuthService)(nil)
