package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/multiplayerbase/matchmaking-backend/pkg/logger"
	"github.com/multiplayerbase/matchmaking-backend/pkg/ratelimit"
)

// KeyFunc extracts the rate limit key for a request.
type KeyFunc func(*gin.Context) string

// UserKey keys limits by the verified user; runs after Auth.
func UserKey(c *gin.Context) string {
	if userID, ok := UserID(c); ok {
		return "user:" + userID.String()
	}
	return ""
}

// IPKey keys limits by client address, for unauthenticated endpoints.
func IPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// RateLimit limits requests with an in-process token bucket per key.
func RateLimit(capacity, refillRate float64, keyFunc KeyFunc) gin.HandlerFunc {
	limiter := ratelimit.NewLimiter(capacity, refillRate)

	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required for rate limiting",
			})
			c.Abort()
			return
		}

		if !limiter.Allow(key) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %.0f per second", refillRate),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RedisRateLimit limits requests through a shared Redis bucket so the
// limit holds across instances. Redis failures fail open: matchmaking
// availability beats limit precision.
func RedisRateLimit(limiter *ratelimit.RedisLimiter, limit int, window time.Duration, keyFunc KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required for rate limiting",
			})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		allowed, info, err := limiter.Allow(ctx, key, limit, window)
		if err != nil {
			logger.Warn("Redis rate limit check failed, allowing request",
				"key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(info.ResetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", limit, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
