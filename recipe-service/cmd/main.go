package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
	"recipehub/pkg/middleware"
	"recipehub/recipe-service/internal/app/recipe/config"
	"recipehub/recipe-service/internal/app/recipe/handler"
	"recipehub/recipe-service/internal/app/recipe/infrastructure"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/cache"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/database"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/document"
	"recipehub/recipe-service/internal/app/recipe/infrastructure/messaging"
	"recipehub/recipe-service/internal/app/recipe/repository"
	"recipehub/recipe-service/internal/app/recipe/service"
)

const serviceName = "recipe-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Logging.Level)
	if cfg.Logging.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Logging.LogstashAddr, serviceName, cfg.Logging.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Logging.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to get database handle")
	}
	defer sqlDB.Close()
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	poolCtx, stopPoolStats := context.WithCancel(context.Background())
	defer stopPoolStats()
	go metrics.ReportDbPoolStats(poolCtx, serviceName, sqlDB, 15*time.Second)

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Redis is optional: without it filters are not cached and requests are not rate limited
	var filterCache infrastructure.FilterCache
	var limiter *middleware.RateLimiter
	redisClient, err := cache.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address()).Msg("Redis unavailable, running without cache and rate limiting")
	} else {
		defer redisClient.Close()
		filterCache = redisClient

		rlCfg := middleware.DefaultRateLimitConfig(serviceName)
		rlCfg.Limit = cfg.RateLimit.PerMinute
		limiter = middleware.NewRateLimiter(redisClient.Client(), rlCfg)
		logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")
	}

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Kafka producer initialized")

	recipeService := service.NewRecipeService(
		repository.NewRecipeRepository(db),
		repository.NewRatingRepository(db),
		repository.NewFavoriteRepository(db),
		filterCache,
		kafkaProducer,
		document.NewPDFRenderer(),
		cfg.Redis.FilterTTL,
	)

	recipeHandler := handler.NewRecipeHandler(recipeService)
	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(recipeHandler, authMiddleware, limiter, sqlDB)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Recipe Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Recipe Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Recipe Service stopped gracefully")
}
