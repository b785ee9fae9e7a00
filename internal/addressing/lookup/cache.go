package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long reference data is served without being
// refreshed. Postal-code data changes rarely; five minutes keeps the
// external API mostly idle under steady traffic.
const DefaultCacheTTL = 5 * time.Minute

// Cache decorates a Source with a Redis read-through cache and collapses
// concurrent misses for the same postal code into a single upstream call.
//
// Cache failures are never fatal: a broken Redis degrades to calling the
// source directly, logged at warn level.
type Cache struct {
	source Source
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheTTL overrides the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger attaches a structured logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache wraps source with a Redis cache.
func NewCache(source Source, rdb *redis.Client, opts ...CacheOption) *Cache {
	c := &Cache{
		source: source,
		redis:  rdb,
		ttl:    DefaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(postalCode string) string {
	return "lookup:postal:" + postalCode
}

// Localities serves from cache when possible, otherwise fetches from the
// source and stores the answer. Only successful answers are cached; faults
// must stay visible to the circuit breaker on every call.
func (c *Cache) Localities(ctx context.Context, postalCode string) ([]Locality, error) {
	key := cacheKey(postalCode)

	cached, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var localities []Locality
		if err := json.Unmarshal(cached, &localities); err == nil {
			return localities, nil
		}
		c.logger.Warn("discarding corrupt lookup cache entry", "key", key)
	} else if err != redis.Nil {
		c.logger.Warn("lookup cache read failed", "key", key, "error", err)
	}

	// Collapse concurrent misses for the same code into one flight.
	result, err, _ := c.group.Do(postalCode, func() (any, error) {
		localities, err := c.source.Localities(ctx, postalCode)
		if err != nil {
			return nil, err
		}
		if payload, marshalErr := json.Marshal(localities); marshalErr == nil {
			if setErr := c.redis.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
				c.logger.Warn("lookup cache write failed", "key", key, "error", setErr)
			}
		}
		return localities, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Locality), nil
}
