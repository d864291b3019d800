package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipehub/gdpr-worker/internal/app/gdpr/config"
	"recipehub/gdpr-worker/internal/app/gdpr/handler"
	"recipehub/gdpr-worker/internal/app/gdpr/processor"
	"recipehub/gdpr-worker/internal/app/gdpr/repository"
	"recipehub/gdpr-worker/internal/app/gdpr/service"
	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
)

const (
	serviceName     = "gdpr-worker"
	connectAttempts = 10
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to get database handle")
	}
	defer sqlDB.Close()
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")
	go metrics.ReportDbPoolStats(ctx, serviceName, sqlDB, 15*time.Second)

	mongoClient, err := connectMongoDB(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	deletionRepo := repository.NewDeletionRepository(db)
	auditRepo := repository.NewAuditRepository(mongoClient.Database(cfg.Mongo.Database), cfg.Mongo.Collection)

	deletionSvc := service.NewDeletionService(deletionRepo, auditRepo, cfg.GDPR.GracePeriod)
	auditSvc := service.NewAuditService(auditRepo)

	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		auditSvc,
	)
	kafkaConsumer.Start(ctx)
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Msg("Kafka consumer started")

	cronScheduler := processor.NewCronScheduler(deletionSvc)
	if err := cronScheduler.Start(ctx, cfg.Cron.SweepSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	logger.Info().
		Str("schedule", cfg.Cron.SweepSchedule).
		Dur("grace_period", cfg.GDPR.GracePeriod).
		Msg("Deletion sweep scheduled")

	healthHandler := handler.NewHealthCheckHandler(deletionRepo, auditRepo)
	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting health and metrics server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down GDPR worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	cancel()
	kafkaConsumer.Stop()
	cronScheduler.Stop()

	logger.Info().Msg("GDPR worker stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					sqlDB.SetMaxOpenConns(5)
					sqlDB.SetMaxIdleConns(2)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					return db, nil
				}
				sqlDB.Close()
			} else {
				err = dbErr
			}
		}

		logger.Warn().
			Err(err).
			Int("attempt", i+1).
			Int("max_attempts", connectAttempts).
			Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

func connectMongoDB(cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error
	for i := 0; i < connectAttempts; i++ {
		client, err = pingMongo(clientOptions)
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

func pingMongo(opts *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
