package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window counter backed by redis so the limit holds
// across replicas. It fronts the promo validation endpoint to blunt
// brute-force code guessing.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

const (
	validateLimit  = 10
	validateWindow = time.Minute
)

// ProvideRateLimiter builds the limiter for the promo validation endpoint.
func ProvideRateLimiter(client *redis.Client, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(client, validateLimit, validateWindow, logger)
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := rl.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err = rl.client.Expire(ctx, "ratelimit:"+key, rl.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(rl.limit), nil
}

// ClientKey identifies the caller: first hop of X-Forwarded-For, then
// X-Real-IP, then the socket address.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

func RateLimit(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := rl.Allow(c.Request().Context(), ClientKey(c.Request()))
			if err != nil {
				// Redis being down should not take checkout with it.
				rl.logger.Error("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}
