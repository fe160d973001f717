package cache

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist-mcp-server/internal/domain"
)

// unreachableConfig points at a port nothing listens on.
func unreachableConfig() domain.CacheConfig {
	return domain.CacheConfig{
		Enabled:     true,
		Backend:     BackendRedis,
		RedisURL:    "redis://127.0.0.1:1/0",
		DialTimeout: 50 * time.Millisecond,
		DefaultTTL:  time.Minute,
	}
}

func TestRedisCache_FailuresAreMisses(t *testing.T) {
	logger, hook := test.NewNullLogger()
	c, err := NewRedisCache(unreachableConfig(), logger)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	_, ok := c.Get(ctx, "brain:abc")
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "brain:abc", []byte("{}")))
	assert.Error(t, c.Set(ctx, "brain:abc", []byte("{}")))

	assert.Equal(t, gobreaker.StateOpen, c.BreakerState())

	err = c.Set(ctx, "brain:abc", []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	_, ok = c.Get(ctx, "brain:abc")
	assert.False(t, ok)

	var tripped bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Circuit breaker state changed" {
			tripped = true
			assert.Equal(t, "open", e.Data["to"])
		}
	}
	assert.True(t, tripped)
	assert.Error(t, c.Ping(ctx))
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewRedisCache(domain.CacheConfig{RedisURL: "http://not-redis"}, logger)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, _ := test.NewNullLogger()

	c, err := New(domain.CacheConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(domain.CacheConfig{Enabled: true, Backend: "Memory", MaxItems: 4}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(unreachableConfig(), logger)
	require.NoError(t, err)
	require.IsType(t, &RedisCache{}, c)
	assert.NoError(t, c.(*RedisCache).Close())

	_, err = New(domain.CacheConfig{Enabled: true, Backend: "memcached"}, logger)
	assert.ErrorContains(t, err, "unknown cache backend")
}
