package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RPS   float64
	Burst int
}

// RateLimiter keeps one token bucket per client IP. Buckets expire after
// a period of inactivity so the map does not grow without bound.
type RateLimiter struct {
	clients *gocache.Cache
	rps     rate.Limit
	burst   int
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		clients: gocache.New(10*time.Minute, 15*time.Minute),
		rps:     rate.Limit(config.RPS),
		burst:   config.Burst,
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		var limiter *rate.Limiter
		if v, ok := rl.clients.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rl.rps, rl.burst)
			rl.clients.Set(ip, limiter, gocache.DefaultExpiration)
		}

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
