package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/config"
	"github.com/ripplefeed/ripple/controllers"
	"github.com/ripplefeed/ripple/middleware"
	"github.com/ripplefeed/ripple/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
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
	r.Use(middleware.RequestID())

	// Access log goes to its own rolling file instead of the app log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	interactionController := controllers.NewInteractionController(db)
	userController := controllers.NewUserController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/github/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/github/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public reads
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/trending", postController.Trending)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", interactionController.ListComments)
	api.GET("/users", userController.ListUsers)
	api.GET("/users/:username", userController.GetUser)
	api.GET("/users/:username/posts", userController.ListUserPosts)
	api.GET("/users/:username/shares", userController.ListUserShares)
	api.GET("/stats", statsController.GetStats)

	// Authenticated writes
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", interactionController.LikePost)
	protected.DELETE("/posts/:id/like", interactionController.UnlikePost)
	protected.POST("/posts/:id/share", interactionController.SharePost)
	protected.DELETE("/posts/:id/share", interactionController.UnsharePost)
	protected.POST("/posts/:id/comments", interactionController.CreateComment)
	protected.PUT("/comments/:commentId", interactionController.UpdateComment)
	protected.DELETE("/comments/:commentId", interactionController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
