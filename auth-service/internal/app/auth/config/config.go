package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds auth-service settings
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Logging   LoggingConfig
	Lockout   LockoutConfig
	GDPR      GDPRConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig points at the shared recipehub database
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig is used by the token blacklist and the rate limiter
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig for USER_REGISTERED, USER_DATA_EXPORTED and USER_DELETION_REQUESTED
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type JWTConfig struct {
	Secret              string
	AccessTokenDuration time.Duration
}

type LoggingConfig struct {
	Level        string
	LogstashAddr string
}

// LockoutConfig controls brute-force protection on login
type LockoutConfig struct {
	MaxAttempts int
	Duration    time.Duration
}

type GDPRConfig struct {
	// GracePeriod between a deletion request and the hard delete by gdpr-worker
	GracePeriod time.Duration
}

type RateLimitConfig struct {
	PerMinute int
}

func Load() (*Config, error) {
	accessDuration, err := getEnvDuration("JWT_ACCESS_DURATION", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	lockDuration, err := getEnvDuration("LOCKOUT_DURATION", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	gracePeriod, err := getEnvDuration("GDPR_GRACE_PERIOD", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recipehub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "user_events"),
		},
		JWT: JWTConfig{
			Secret:              os.Getenv("JWT_SECRET"),
			AccessTokenDuration: accessDuration,
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: os.Getenv("LOGSTASH_ADDR"),
		},
		Lockout: LockoutConfig{
			MaxAttempts: getEnvInt("MAX_LOGIN_ATTEMPTS", 5),
			Duration:    lockDuration,
		},
		GDPR: GDPRConfig{
			GracePeriod: gracePeriod,
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.Lockout.MaxAttempts < 1 {
		return nil, fmt.Errorf("MAX_LOGIN_ATTEMPTS must be positive, got %d", cfg.Lockout.MaxAttempts)
	}

	return cfg, nil
}

// ConnString returns a postgres URL for pgxpool
func (c *DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
