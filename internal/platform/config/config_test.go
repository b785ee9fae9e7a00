package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.JWTSigningKey)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 10, cfg.Breaker.SlidingWindowSize)
	assert.Equal(t, 5, cfg.Breaker.MinimumCalls)
	assert.InDelta(t, 30, cfg.Breaker.FailureRateThreshold, 0.001)
	assert.Equal(t, time.Minute, cfg.Breaker.OpenStateDuration)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CLIENTELE_ADDR", ":9090")
	t.Setenv("CLIENTELE_KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("CLIENTELE_BREAKER_OPEN_DURATION", "30s")
	t.Setenv("CLIENTELE_BREAKER_WINDOW_SIZE", "20")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.Breaker.OpenStateDuration)
	assert.Equal(t, 20, cfg.Breaker.SlidingWindowSize)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CLIENTELE_BREAKER_WINDOW_SIZE", "lots")
	t.Setenv("CLIENTELE_BREAKER_OPEN_DURATION", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.Breaker.SlidingWindowSize)
	assert.Equal(t, time.Minute, cfg.Breaker.OpenStateDuration)
}
