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

const serviceName = "recipe-service"

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SetupRoutes builds the recipe-service engine. limiter may be nil.
func SetupRoutes(recipeHandler *RecipeHandler, authMiddleware *AuthMiddleware, limiter *middleware.RateLimiter, db Pinger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{logger.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
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

	recipes := router.Group("/api/v1/recipes")
	{
		// static segments are registered before /:id
		recipes.GET("/search", authMiddleware.OptionalAuthenticate(), recipeHandler.Search)
		recipes.GET("/random", authMiddleware.OptionalAuthenticate(), recipeHandler.Random)
		recipes.GET("/filters", recipeHandler.Filters)
		recipes.GET("/favorites/me", authMiddleware.Authenticate(), recipeHandler.MyFavorites)

		recipes.POST("", authMiddleware.Authenticate(), recipeHandler.CreateRecipe)
		recipes.POST("/:id/rate", authMiddleware.Authenticate(), recipeHandler.Rate)
		recipes.POST("/:id/favorite", authMiddleware.Authenticate(), recipeHandler.ToggleFavorite)

		recipes.GET("/:id/pdf", recipeHandler.ExportPDF)
		recipes.GET("/:id", authMiddleware.OptionalAuthenticate(), recipeHandler.GetRecipe)
	}

	return router
}
