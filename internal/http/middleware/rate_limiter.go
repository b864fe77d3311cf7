package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"wara2_bot/internal/logger"
)

var redisClient *redis.Client

// InitRedisRateLimiter подключает redis для лимитера. Пустой адрес
// оставляет лимитер выключенным - все запросы проходят.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Info("rate limiter disabled: no redis address")
		return
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, rate limiter disabled", "error", err)
		redisClient = nil
		return
	}
	logger.Info("rate limiter enabled", "addr", addr)
}

// RateLimit ограничивает число запросов с одного адреса фиксированным
// окном в минуту. Без redis и при его ошибках - fail-open.
func RateLimit(perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rl:%s:%s", c.ClientIP(), time.Now().Format("200601021504"))
		ctx := c.Request.Context()

		n, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter incr failed", "error", err)
			c.Next()
			return
		}
		if n == 1 {
			redisClient.Expire(ctx, key, time.Minute)
		}
		if n > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
