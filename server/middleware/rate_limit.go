package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the sustained number of requests per second allowed per client.
	DefaultRate = 10
	// DefaultBurst is the number of requests a client may make at once.
	DefaultBurst = 20
)

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	rate   rate.Limit
	burst  int
}

// NewRateLimiter creates a limiter allowing DefaultRate requests per second with DefaultBurst.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithLimit(DefaultRate, DefaultBurst)
}

// NewRateLimiterWithLimit creates a limiter allowing perSecond requests with the given burst.
func NewRateLimiterWithLimit(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		rate:   rate.Limit(perSecond),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.limits[key]
	rl.mu.RUnlock()
	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rl.rate, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware rejects requests over the per-client limit with 429. Clients are
// keyed by echo's RealIP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"code":    "RATE_LIMITED",
					"message": "Too many requests, please slow down",
				})
			}
			return next(c)
		}
	}
}
