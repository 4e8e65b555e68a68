package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/observability"
)

type RouterDeps struct {
	Auth           *AuthHandler
	Tasks          *TaskHandler
	Sessions       SessionVerifier
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        *observability.Metrics
	// Registry is served on /metrics when set.
	Registry  *prometheus.Registry
	StartedAt time.Time
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger, deps.Metrics))
	router.Use(CORSMiddleware(deps.AllowedOrigins, true))

	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(observability.Handler(deps.Registry)))
	}

	api := router.Group("/api")
	api.GET("/health", Health(deps.StartedAt))
	api.GET("/openapi.json", OpenAPIDoc)

	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/forgot-password", deps.Auth.ForgotPassword)
	auth.POST("/reset-password", deps.Auth.ResetPassword)
	auth.GET("/me", AuthMiddleware(deps.Sessions), deps.Auth.Me)

	tasks := api.Group("/tasks")
	tasks.Use(AuthMiddleware(deps.Sessions))
	tasks.GET("", deps.Tasks.ListTasks)
	tasks.POST("", deps.Tasks.CreateTask)
	tasks.PUT("/:id", deps.Tasks.CompleteTask)
	tasks.DELETE("/:id", deps.Tasks.DeleteTask)

	return router
}
