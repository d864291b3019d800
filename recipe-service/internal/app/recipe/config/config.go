package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds recipe-service settings: HTTP, PostgreSQL, Redis, Kafka, JWT
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Import    ImportConfig
}

type ServerConfig struct {
	Host string // default 0.0.0.0
	Port string // default 8081
}

// DatabaseConfig points at the shared database holding recipes, ratings and favorites
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full
}

// RedisConfig is used by the filter-options cache and the rate limiter
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int           // 0-15
	FilterTTL time.Duration // lifetime of the cached filter options
}

// KafkaConfig for RECIPE_CREATED, RECIPE_RATED and RECIPE_FAVORITE_TOGGLED
type KafkaConfig struct {
	Brokers []string // host:port
	Topic   string
}

// JWTConfig must share its secret with auth-service
type JWTConfig struct {
	Secret string
}

type LoggingConfig struct {
	Level        string
	LogstashAddr string // optional
}

type RateLimitConfig struct {
	PerMinute int
}

// ImportConfig is read by cmd/import
type ImportConfig struct {
	Author    string // author for rows without one
	BatchSize int
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	filterTTL, err := time.ParseDuration(getEnv("FILTER_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FILTER_CACHE_TTL value: %w", err)
	}

	perMinute, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE value: %w", err)
	}

	batchSize, err := strconv.Atoi(getEnv("IMPORT_BATCH_SIZE", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_BATCH_SIZE value: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recipehub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			FilterTTL: filterTTL,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "recipe_events"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: os.Getenv("LOGSTASH_ADDR"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: perMinute,
		},
		Import: ImportConfig{
			Author:    getEnv("IMPORT_AUTHOR", "RecipeHub"),
			BatchSize: batchSize,
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// DSN returns a libpq style connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
