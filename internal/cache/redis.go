package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/radassist-mcp-server/internal/domain"
)

// DefaultKeyPrefix namespaces verdict keys in a shared Redis.
const DefaultKeyPrefix = "radassist:verdict:"

// RedisCache stores verdicts in Redis behind a circuit breaker. Any Redis failure is reported
// as a miss so evaluations never depend on Redis being up.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
	ttl     time.Duration
	prefix  string
}

var _ domain.VerdictCache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed cache from config. The connection is not checked here;
// call Ping for a readiness probe.
func NewRedisCache(config domain.CacheConfig, logger *logrus.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.DialTimeout > 0 {
		opts.DialTimeout = config.DialTimeout
		opts.ReadTimeout = config.DialTimeout
		opts.WriteTimeout = config.DialTimeout
	}
	opts.MaxRetries = 0

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	c := &RedisCache{
		client: redis.NewClient(opts),
		logger: logger,
		ttl:    config.DefaultTTL,
		prefix: prefix,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "verdict-cache",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	return c, nil
}

// Get returns the cached value. Misses, Redis errors and an open breaker all report false.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.logger.WithError(err).WithField("cache_key", key).Debug("Redis verdict lookup failed")
		return nil, false
	}
	data, _ := result.([]byte)
	if data == nil {
		return nil, false
	}
	return data, true
}

// Set stores value with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.prefix+key, value, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to cache verdict in Redis: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// BreakerState reports the circuit breaker state.
func (c *RedisCache) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
