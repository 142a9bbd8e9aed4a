// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// RateLimit implements a fixed one-minute window per client IP in Redis.
// Requests pass through when Redis is unavailable.
func RateLimit(cfg *config.Config, redisClient *redis.Client, log logrus.FieldLogger) gin.HandlerFunc {
	limit := cfg.Security.RateLimitPerMinute

	return func(c *gin.Context) {
		if redisClient == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:" + c.ClientIP()

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			log.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
