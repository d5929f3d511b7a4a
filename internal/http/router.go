package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/skillpath/backend/internal/http/handlers"
	httpMW "github.com/skillpath/backend/internal/http/middleware"
	"github.com/skillpath/backend/internal/platform/logger"
	"github.com/skillpath/backend/internal/types"
)

type RouterConfig struct {
	Log            *logger.Logger
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler     *httpH.AuthHandler
	RoadmapHandler  *httpH.RoadmapHandler
	QuizHandler     *httpH.QuizHandler
	ProgressHandler *httpH.ProgressHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	}

	// Catalog reads are public; only published roadmaps are listed for
	// anonymous callers.
	if cfg.RoadmapHandler != nil {
		api.GET("/roadmaps", cfg.RoadmapHandler.List)
		api.GET("/roadmaps/:id", cfg.RoadmapHandler.Get)
	}
	if cfg.QuizHandler != nil {
		api.GET("/quizzes", cfg.QuizHandler.List)
		api.GET("/quizzes/:id", cfg.QuizHandler.Get)
		api.GET("/roadmaps/:id/quizzes", cfg.QuizHandler.ListForRoadmap)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.AuthHandler != nil {
		protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	}

	// Catalog writes (admin or instructor)
	if cfg.RoadmapHandler != nil && cfg.AuthMiddleware != nil {
		editors := cfg.AuthMiddleware.RequireRole(types.RoleAdmin, types.RoleInstructor)
		protected.POST("/roadmaps", editors, cfg.RoadmapHandler.Create)
		protected.PUT("/roadmaps/:id", editors, cfg.RoadmapHandler.Update)
		protected.DELETE("/roadmaps/:id", editors, cfg.RoadmapHandler.Delete)
		if cfg.QuizHandler != nil {
			protected.POST("/roadmaps/:id/quizzes", editors, cfg.QuizHandler.Create)
			protected.PUT("/quizzes/:id", editors, cfg.QuizHandler.Update)
			protected.DELETE("/quizzes/:id", editors, cfg.QuizHandler.Delete)
		}
	}

	// Progress
	if cfg.ProgressHandler != nil {
		protected.GET("/progress", cfg.ProgressHandler.GetMyProgress)
		if cfg.AuthMiddleware != nil {
			protected.GET("/progress/admin/all", cfg.AuthMiddleware.RequireRole(types.RoleAdmin), cfg.ProgressHandler.GetAllProgress)
		}
		protected.GET("/progress/:roadmapId", cfg.ProgressHandler.GetProgressForRoadmap)
		protected.POST("/progress/:roadmapId/start", cfg.ProgressHandler.StartRoadmap)
		protected.PUT("/progress/:roadmapId/complete-day/:weekNumber/:dayNumber", cfg.ProgressHandler.CompleteDay)
		protected.POST("/progress/:roadmapId/submit-quiz/:quizId", cfg.ProgressHandler.SubmitQuiz)
		protected.POST("/progress/:roadmapId/submit-project/:weekNumber", cfg.ProgressHandler.SubmitProject)
	}

	return r
}
