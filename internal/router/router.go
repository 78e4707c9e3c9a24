package router

import (
	"net/http"
	"time"

	"github.com/eksamina/eksaminator-backend/internal/config"
	"github.com/eksamina/eksaminator-backend/internal/handler"
	"github.com/eksamina/eksaminator-backend/internal/middleware"
	"github.com/eksamina/eksaminator-backend/internal/response"
	"github.com/eksamina/eksaminator-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Exam    *handler.ExamHandler
	Student *handler.StudentHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireExaminerJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireExaminerJWT(authService), handlers.Auth.GetProfile)
	}

	// ─── 2. Examiner Group (JWT + Single Device) ───────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireExaminerJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		// Exam management
		api.POST("/exams", handlers.Exam.Create)
		api.GET("/exams", handlers.Exam.List)
		api.GET("/exams/history", handlers.Exam.History)
		api.GET("/exams/:exam_id", handlers.Exam.GetDetail)
		api.GET("/exams/:exam_id/results", handlers.Exam.ListResults)
		api.GET("/exams/:exam_id/statistics", handlers.Exam.GetStatistics)

		// Enrollment
		api.GET("/exams/:exam_id/students", handlers.Student.List)
		api.POST("/exams/:exam_id/students", handlers.Student.Enroll)

		// Live session
		api.POST("/session/load", handlers.Session.Load)
		api.GET("/session", handlers.Session.GetState)
		api.POST("/session/draw", handlers.Session.DrawQuestion)
		api.POST("/session/start", handlers.Session.StartExamination)
		api.POST("/session/end", handlers.Session.EndExamination)
		api.POST("/session/grade", handlers.Session.SubmitGrade)
	}

	// ─── 3. WebSocket Group (Examiner WS Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireExaminerWSAuth(authService))
	{
		ws.GET("/session/stream", handlers.WS.SessionStream)
	}

	return router
}
