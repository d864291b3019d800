package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
	"recipehub/pkg/middleware"
)

const serviceName = "auth-service"

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRoutes builds the auth-service engine. limiter may be nil.
func SetupRoutes(authHandler *AuthHandler, authMiddleware *AuthMiddleware, limiter *middleware.RateLimiter, db Pinger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error().Err(err).Msg("Health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"service":  serviceName,
				"database": "down",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  serviceName,
			"database": "up",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", authHandler.Me)
			protected.POST("/logout", authHandler.Logout)
		}
	}

	gdpr := router.Group("/api/v1/gdpr")
	gdpr.Use(authMiddleware.Authenticate())
	{
		gdpr.GET("/export", authHandler.ExportData)
		gdpr.POST("/delete", authHandler.DeleteAccount)
	}

	return router
}
