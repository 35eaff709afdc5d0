package handlers

import (
	"log/slog"
	"net/http"

	"github.com/focusflow/focusflow-api/internal/constants"
	"github.com/focusflow/focusflow-api/internal/middleware"
	"github.com/focusflow/focusflow-api/internal/ratelimit"
	"github.com/focusflow/focusflow-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RouterConfig collects what the HTTP layer is wired to.
type RouterConfig struct {
	AuthService  *services.AuthService
	TokenService *services.TokenService
	TaskService  *services.TaskService
	AIService    *services.AIService
	SessionStore sessions.Store

	// AILimiter is optional; without it the assistant endpoint is not throttled.
	AILimiter   ratelimit.Limiter
	AIRateLimit int
	Logger      *slog.Logger
}

// NewRouter registers every route of the API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))

	authHandler := NewAuthHandler(cfg.AuthService, cfg.TokenService)
	taskHandler := NewTaskHandler(cfg.TaskService)
	aiHandler := NewAIHandler(cfg.AIService)

	requireAuth := middleware.RequireAuth(cfg.TokenService)
	requireTask := middleware.RequireTaskAccess(cfg.TaskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "FocusFlow API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/session", requireAuth, authHandler.GetSession)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.POST("/update-password", requireAuth, authHandler.UpdatePassword)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.PUT("/:id", requireTask, taskHandler.UpdateTask)
			tasks.PATCH("/:id", requireTask, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
		}

		ai := api.Group("/ai")
		ai.Use(requireAuth)
		if cfg.AILimiter != nil {
			ai.Use(ratelimit.Middleware(cfg.AILimiter, cfg.AIRateLimit, cfg.Logger))
		}
		ai.POST("/generate", aiHandler.Generate)
	}

	return r
}
