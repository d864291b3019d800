package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"recipehub/auth-service/internal/app/auth/config"
	"recipehub/auth-service/internal/app/auth/handler"
	"recipehub/auth-service/internal/app/auth/infrastructure/messaging"
	"recipehub/auth-service/internal/app/auth/repository"
	"recipehub/auth-service/internal/app/auth/service"
	"recipehub/auth-service/internal/app/auth/util"
	"recipehub/pkg/logger"
	"recipehub/pkg/middleware"
)

const serviceName = "auth-service"

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
		}
	}

	db, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare schema")
	}

	// the blacklist lives in Redis, so logout cannot work without it
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		logger.Fatal().Err(err).Str("addr", cfg.Redis.Address()).Msg("Failed to connect to Redis")
	}
	cancel()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Kafka producer initialized")

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenDuration)

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(
		userRepo,
		repository.NewRedisTokenBlacklist(redisClient),
		kafkaProducer,
		jwtManager,
		cfg.Lockout,
	)
	gdprService := service.NewGDPRService(
		authService,
		userRepo,
		repository.NewActivityRepository(db),
		kafkaProducer,
		cfg.GDPR.GracePeriod,
	)

	rlCfg := middleware.DefaultRateLimitConfig(serviceName)
	rlCfg.Limit = cfg.RateLimit.PerMinute
	limiter := middleware.NewRateLimiter(redisClient, rlCfg)

	authHandler := handler.NewAuthHandler(authService, gdprService)
	authMiddleware := handler.NewAuthMiddleware(authService)
	router := handler.SetupRoutes(authHandler, authMiddleware, limiter, db)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Auth Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Auth Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Auth Service stopped gracefully")
}

func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	const attempts = 10
	var pool *pgxpool.Pool
	for i := 0; i < attempts; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", attempts).Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempts, err)
}

func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}
