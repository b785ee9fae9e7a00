// Package config builds the process configuration from environment
// variables so main stays lean. Every setting has a development-friendly
// default; only external endpoints must be supplied explicitly.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Addr string

	// JWTSigningKey enables bearer-token auth on the client API when
	// non-empty. Empty leaves the API open, the local development mode.
	JWTSigningKey string

	// PostgresURL selects the postgres store when non-empty; otherwise the
	// in-memory store is used.
	PostgresURL string

	// RedisURL enables the lookup cache when non-empty.
	RedisURL string

	// KafkaBrokers enables address-changed events when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	Lookup  Lookup
	Breaker Breaker
}

// Lookup configures the postal-code lookup client.
type Lookup struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Breaker configures the circuit protecting the lookup API.
type Breaker struct {
	SlidingWindowSize     int
	MinimumCalls          int
	FailureRateThreshold  float64
	SlowCallRateThreshold float64
	SlowCallThreshold     time.Duration
	OpenStateDuration     time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envString("CLIENTELE_ADDR", ":8080"),
		JWTSigningKey: os.Getenv("CLIENTELE_JWT_SIGNING_KEY"),
		PostgresURL:   os.Getenv("CLIENTELE_POSTGRES_URL"),
		RedisURL:      os.Getenv("CLIENTELE_REDIS_URL"),
		KafkaBrokers:  envList("CLIENTELE_KAFKA_BROKERS"),
		KafkaTopic:    os.Getenv("CLIENTELE_KAFKA_TOPIC"),
		Lookup: Lookup{
			BaseURL:  envString("CLIENTELE_LOOKUP_BASE_URL", "https://apicarto.ign.fr"),
			Timeout:  envDuration("CLIENTELE_LOOKUP_TIMEOUT", 2*time.Second),
			CacheTTL: envDuration("CLIENTELE_LOOKUP_CACHE_TTL", 5*time.Minute),
		},
		Breaker: Breaker{
			SlidingWindowSize:     envInt("CLIENTELE_BREAKER_WINDOW_SIZE", 10),
			MinimumCalls:          envInt("CLIENTELE_BREAKER_MINIMUM_CALLS", 5),
			FailureRateThreshold:  envFloat("CLIENTELE_BREAKER_FAILURE_RATE", 30),
			SlowCallRateThreshold: envFloat("CLIENTELE_BREAKER_SLOW_RATE", 50),
			SlowCallThreshold:     envDuration("CLIENTELE_BREAKER_SLOW_CALL_THRESHOLD", 3*time.Second),
			OpenStateDuration:     envDuration("CLIENTELE_BREAKER_OPEN_DURATION", time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
