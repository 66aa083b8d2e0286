package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alx-polly/polly/caching"
	"github.com/alx-polly/polly/logger"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
	SkipPaths         []string
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		SkipPaths: []string{"/assets/", "/favicon.ico"},
	}
}

func (config RateLimitConfig) shouldSkip(path string) bool {
	for _, skipPath := range config.SkipPaths {
		if len(path) >= len(skipPath) && path[:len(skipPath)] == skipPath {
			return true
		}
	}
	return false
}

// RateLimitMiddleware counts requests per key per path in the in-process
// cache, with a one-minute window.
func RateLimitMiddleware(store *caching.Cache, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		rateLimitKey := "ratelimit:" + key + ":" + c.Request.URL.Path

		newCount, err := store.Memory().IncrementInt64(rateLimitKey, 1)
		if err != nil {
			// First request in the window
			store.Memory().Set(rateLimitKey, int64(1), time.Minute)
			newCount = 1
		}

		if newCount > int64(config.RequestsPerMinute) {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.Request.URL.Path, newCount)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(config.RequestsPerMinute)-newCount, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		c.Next()
	}
}
