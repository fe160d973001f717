package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/radassist-mcp-server/internal/domain"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// RateLimiter hands out one token bucket per client IP. Idle clients are forgotten.
type RateLimiter struct {
	mu      sync.Mutex
	clients *expirable.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a per-client limiter allowing rps requests per second with burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// Allow reports whether client may make a request now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	limiter, ok := rl.clients.Get(client)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients.Add(client, limiter)
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "1"
	if rl.limit > 0 && rl.limit < 1 {
		retryAfter = strconv.Itoa(int(1/float64(rl.limit)) + 1)
	}

	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				domain.NewAPIError(domain.ErrRateLimit, "rate limit exceeded", "", GetCorrelationID(c)))
			return
		}
		c.Next()
	}
}
