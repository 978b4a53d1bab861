package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-seb/internal/config"
	"github.com/stemsi/exstem-seb/internal/handler"
	"github.com/stemsi/exstem-seb/internal/middleware"
	"github.com/stemsi/exstem-seb/internal/model"
	"github.com/stemsi/exstem-seb/internal/response"
	"github.com/stemsi/exstem-seb/internal/seb"
	"github.com/stemsi/exstem-seb/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	Exam    *handler.ExamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// startLimiter may be nil to leave attempt creation unthrottled.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	startLimiter *middleware.RateLimiter,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = append([]string{
		"Origin", "Content-Type", "Authorization", "X-Request-ID",
		"X-SEB-Browser-Key", "X-Exam-Kiosk-Client",
	}, seb.HashHeaderAliases...)
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "Content-Disposition"}
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

	startChain := []gin.HandlerFunc{}
	if startLimiter != nil {
		startChain = append(startChain, startLimiter.Middleware())
	}
	startChain = append(startChain, handlers.Attempt.StartAttempt)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService))

	// ─── 1. Exam Group (JWT) ───────────────────────────────────────────
	exams := api.Group("/exams/:exam_id")
	{
		exams.POST("/start", startChain...)
		exams.GET("/questions", middleware.NoStore(), handlers.Exam.GetQuestions)
		exams.GET("/seb-config", middleware.NoStore(), handlers.Exam.DownloadSEBConfig)
		exams.GET("/seb-config-info", handlers.Exam.GetSEBConfigInfo)
	}

	// ─── 2. Attempt Group (JWT, owner only) ────────────────────────────
	attempts := api.Group("/attempts/:attempt_id")
	{
		attempts.POST("/answer", handlers.Attempt.SubmitAnswer)
		attempts.POST("/submit", handlers.Attempt.SubmitAttempt)
	}

	// ─── 3. Admin Group (Admin JWT + RBAC) ─────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdminJWT(authService))
	{
		admin.POST("/exams/:exam_id/seb-browser-key",
			middleware.RequirePermission(model.PermissionExamsWrite),
			handlers.Exam.GenerateBrowserKey,
		)
	}

	return router
}
