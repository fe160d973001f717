// Package cache memoizes encoded verdicts for the evaluation service.
package cache

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/domain"
)

// Backend names accepted in cache.backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New builds the verdict cache selected by config. It returns nil, nil when caching is disabled.
func New(config domain.CacheConfig, logger *logrus.Logger) (domain.VerdictCache, error) {
	if !config.Enabled {
		return nil, nil
	}

	switch strings.ToLower(config.Backend) {
	case "", BackendMemory:
		return NewMemoryCache(config.MaxItems, config.DefaultTTL), nil
	case BackendRedis:
		c, err := NewRedisCache(config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis verdict cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Backend)
	}
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// HitRatio returns hits over lookups, or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
