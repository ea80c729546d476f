package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biliticket/sessionstore/internal/config"
	"biliticket/sessionstore/internal/handler/middleware"
	"biliticket/sessionstore/internal/metrics"
	"biliticket/sessionstore/internal/repository"
	"biliticket/sessionstore/internal/session"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	store repository.StateStore,
	saveHandler session.SaveHandler,
	sessionHandler *SessionHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", Healthz(store))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	sessionOpts := middleware.SessionOptions{
		Name:          cfg.Session.Name,
		SavePath:      cfg.Session.SavePath,
		Lifetime:      cfg.Session.Lifetime,
		CookieSecure:  cfg.Session.CookieSecure,
		CookieDomain:  cfg.Session.CookieDomain,
		GCProbability: cfg.Session.GCProbability,
		GCDivisor:     cfg.Session.GCDivisor,
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Session(saveHandler, sessionOpts, logger))
	{
		api.GET("/session", sessionHandler.Show)
		api.PUT("/session", sessionHandler.Update)
		api.DELETE("/session", sessionHandler.Destroy)
		api.POST("/session/regenerate", sessionHandler.Regenerate)
	}

	return r
}
