package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 24, cfg.Business.CartRetentionHours)
	assert.Equal(t, 60, cfg.Business.SweepIntervalMinutes)
	assert.Equal(t, 72, cfg.Business.SessionTTLHours)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("CART_RETENTION_HOURS", "6")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 6, cfg.Business.CartRetentionHours)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_TEST_KEY", "value")

	assert.Equal(t, "value", getEnv("SOME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("SOME_TEST_KEY_MISSING", "fallback"))
}
