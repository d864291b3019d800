package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds gdpr-worker settings
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig
	Cron     CronConfig
	GDPR     GDPRConfig
	Logging  LoggingConfig
}

// ServerConfig is the health and metrics listener
type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig for the gdpr_audit collection
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

type CronConfig struct {
	SweepSchedule string
}

type GDPRConfig struct {
	GracePeriod time.Duration
}

type LoggingConfig struct {
	Level        string
	LogstashAddr string
}

func Load() (*Config, error) {
	gracePeriod, err := getEnvDuration("GDPR_GRACE_PERIOD", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8082"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recipehub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "recipehub"),
			Collection: getEnv("MONGO_AUDIT_COLLECTION", "gdpr_audit"),
		},
		Kafka: KafkaConfig{
			Brokers:  strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:    getEnv("KAFKA_TOPIC", "user_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "gdpr-worker"),
			MinBytes: getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes: getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		Cron: CronConfig{
			SweepSchedule: getEnv("GDPR_SWEEP_SCHEDULE", "@every 1h"),
		},
		GDPR: GDPRConfig{
			GracePeriod: gracePeriod,
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if gracePeriod < 0 {
		return nil, fmt.Errorf("GDPR_GRACE_PERIOD must not be negative, got %s", gracePeriod)
	}
	if _, err := cron.ParseStandard(cfg.Cron.SweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid GDPR_SWEEP_SCHEDULE %q: %w", cfg.Cron.SweepSchedule, err)
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return ":" + c.Port
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
