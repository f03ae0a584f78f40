package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planpulse/planpulse/config"
	"github.com/planpulse/planpulse/controllers"
	"github.com/planpulse/planpulse/middleware"
	"github.com/planpulse/planpulse/services"
	"github.com/planpulse/planpulse/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, completions *services.CompletionService) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Access log goes to its own rolling file so request noise stays out of
	// the application log.
	accessLogger, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.AccessLog(accessLogger))
		r.Use(utils.RecoverWithLog(accessLogger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.ActivityRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(cfg)
	projectController := controllers.NewProjectController(db, completions)
	taskController := controllers.NewTaskController(db, completions)
	statsController := controllers.NewStatsController(db, completions)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/check", authController.Check)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public read-only stats
	api.GET("/stats/global", statsController.GetGlobalStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.GET("/projects", projectController.ListProjects)
	protected.POST("/projects", projectController.CreateProject)
	protected.GET("/projects/:id/stats", projectController.GetProjectStats)
	protected.GET("/projects/:id/streak", projectController.GetProjectStreak)
	protected.GET("/projects/:id/badges", projectController.GetProjectBadges)
	protected.GET("/projects/:id/tasks", taskController.ListTasks)
	protected.POST("/projects/:id/tasks", taskController.CreateTask)
	protected.GET("/projects/:id/next-task", taskController.NextTask)
	protected.POST("/tasks/:id/complete", taskController.CompleteTask)
	protected.POST("/tasks/:id/uncomplete", taskController.UncompleteTask)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
