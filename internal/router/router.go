// Package router wires the forum's middleware chain and routes onto gin.
package router

import (
	"net/http"
	"time"

	"github.com/caratemple/forum/internal/constants"
	apierrors "github.com/caratemple/forum/internal/errors"
	"github.com/caratemple/forum/internal/handlers"
	"github.com/caratemple/forum/internal/logger"
	"github.com/caratemple/forum/internal/middleware"
	"github.com/caratemple/forum/internal/monitoring"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps holds what the router needs from main.
type Deps struct {
	DB           *gorm.DB
	SessionStore sessions.Store
	Options      handlers.Options
	CSRFTokenTTL time.Duration
}

// New builds the services and handlers and registers every route.
func New(deps Deps) *gin.Engine {
	userRepo := repository.NewUserRepository(deps.DB)
	discussionRepo := repository.NewDiscussionRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB)
	statsRepo := repository.NewStatsRepository(deps.DB)

	authService := services.NewAuthService(userRepo)
	discussionService := services.NewDiscussionService(discussionRepo, postRepo)
	adminService := services.NewAdminService(userRepo, discussionRepo, postRepo, statsRepo)

	authHandler := handlers.NewAuthHandler(authService, deps.Options)
	discussionHandler := handlers.NewDiscussionHandler(discussionService, deps.Options)
	adminHandler := handlers.NewAdminHandler(adminService, deps.Options)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		apierrors.MethodNotAllowed(c)
	})
	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "")
	})

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.Middleware())
	r.Use(monitoring.Instrument())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CaraTemple is running",
		})
	})
	r.GET("/metrics", monitoring.Handler())

	app := r.Group("")
	app.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))
	app.Use(middleware.Session(deps.CSRFTokenTTL))
	app.Use(middleware.LoadIdentity(authService))
	{
		app.GET("/", discussionHandler.Home)

		app.GET("/register", authHandler.RegisterPage)
		app.POST("/register", authHandler.Register)
		app.GET("/login", authHandler.LoginPage)
		app.POST("/login", authHandler.Login)
		app.POST("/logout", authHandler.Logout)

		app.GET("/discussion", discussionHandler.Show)
		app.POST("/discussion", discussionHandler.Act)
		app.GET("/discussions/new", discussionHandler.NewPage)
		app.POST("/discussions/new", discussionHandler.Create)

		admin := app.Group("/admin")
		admin.Use(middleware.RequireAdminPage(authService))
		{
			admin.GET("", adminHandler.Dashboard)
			admin.POST("", adminHandler.Act)
		}

		api := app.Group("/api")
		{
			api.GET("/search", discussionHandler.SearchAPI)
			api.POST("/like", middleware.RequireAuth("Connecte-toi pour aimer un message."), discussionHandler.LikeAPI)
			api.POST("/post_reply", middleware.RequireAuth("Connecte-toi pour répondre."), discussionHandler.ReplyAPI)
			api.POST("/admin_delete", middleware.RequireAdmin(authService), adminHandler.DeleteAPI)
		}
	}

	return r
}
