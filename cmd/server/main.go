package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caratemple/forum/internal/config"
	"github.com/caratemple/forum/internal/database"
	"github.com/caratemple/forum/internal/handlers"
	"github.com/caratemple/forum/internal/logger"
	"github.com/caratemple/forum/internal/router"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.IsProduction())
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.AdminEmail != "" {
		promoted, err := database.PromoteAdmin(database.GetDB(), cfg.AdminEmail)
		switch {
		case err != nil:
			logrus.WithError(err).Fatal("Failed to promote administrator")
		case !promoted:
			logrus.WithField("email", cfg.AdminEmail).Warn("No account to promote to administrator")
		default:
			logrus.WithField("email", cfg.AdminEmail).Info("Administrator promoted")
		}
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create session store")
	}

	r := router.New(router.Deps{
		DB:           database.GetDB(),
		SessionStore: store,
		Options: handlers.Options{
			BaseURL: cfg.BaseURL,
			Debug:   cfg.Debug,
		},
		CSRFTokenTTL: cfg.CSRFTokenTTL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	if sqlDB, err := database.GetDB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("Server exited")
}

// newSessionStore returns the Redis store, or a signed cookie store when
// SESSION_STORE=cookie.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store

	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
