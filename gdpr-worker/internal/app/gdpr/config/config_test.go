package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "@every 1h", cfg.Cron.SweepSchedule)
	assert.Equal(t, 7*24*time.Hour, cfg.GDPR.GracePeriod)
	assert.Equal(t, "user_events", cfg.Kafka.Topic)
	assert.Equal(t, "gdpr-worker", cfg.Kafka.GroupID)
	assert.Equal(t, "gdpr_audit", cfg.Mongo.Collection)
	assert.Equal(t, ":8082", cfg.Server.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GDPR_SWEEP_SCHEDULE", "*/15 * * * *")
	t.Setenv("GDPR_GRACE_PERIOD", "48h")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "*/15 * * * *", cfg.Cron.SweepSchedule)
	assert.Equal(t, 48*time.Hour, cfg.GDPR.GracePeriod)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad schedule", "GDPR_SWEEP_SCHEDULE", "every hour"},
		{"bad duration", "GDPR_GRACE_PERIOD", "seven days"},
		{"negative duration", "GDPR_GRACE_PERIOD", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "recipehub", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=recipehub sslmode=disable", cfg.DSN())
}
