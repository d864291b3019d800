package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
)

// RateLimitConfig defines a fixed window limit per client IP
type RateLimitConfig struct {
	Window    time.Duration // length of one counting window
	Limit     int           // requests allowed per window
	KeyPrefix string        // redis key prefix
	Service   string        // metrics label
}

// DefaultRateLimitConfig allows 60 requests per minute per IP.
func DefaultRateLimitConfig(service string) RateLimitConfig {
	return RateLimitConfig{
		Window:    time.Minute,
		Limit:     60,
		KeyPrefix: "ratelimit",
		Service:   service,
	}
}

type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(redisClient redis.Cmdable, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// Middleware rejects clients over the limit with 429. Redis failures let
// the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), ClientIP(c))
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Rate limit check failed, allowing request")
			metrics.RecordRedisError(rl.config.Service, metrics.RedisOpIncr)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts one request for id in the current window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, id string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, id, windowStart.Unix())

	timer := metrics.NewRedisTimer(rl.config.Service, metrics.RedisOpIncr)
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	_, err := pipe.Exec(ctx)
	timer.ObserveDuration()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// ClientIP prefers the first X-Forwarded-For hop.
func ClientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	return c.ClientIP()
}
