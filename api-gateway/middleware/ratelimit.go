package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/quintaldo/pos-engine/pkg/logger"
)

// RateLimiter throttles request bursts per caller with a redis sliding
// window. Legitimate POS traffic is a steady trickle per terminal; sustained
// bursts are either a runaway client or abuse.
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redisClient, limit: limit, window: window}
}

// Middleware enforces the limit. The caller is identified by user id once
// authenticated, by client IP before that. Redis failures fail open: a
// broken limiter must not stop sales from being rung up.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := "ip:" + c.IP()
		if userID := c.Locals("user_id"); userID != nil {
			caller = fmt.Sprintf("user:%v", userID)
		}

		allowed, remaining, reset, err := rl.take(c.UserContext(), caller)
		if err != nil {
			logger.Logger.Error().Err(err).Str("caller", caller).Msg("Rate limiter unavailable, allowing request")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

		if !allowed {
			logger.Logger.Warn().
				Str("caller", caller).
				Int("limit", rl.limit).
				Str("path", c.Path()).
				Msg("Rate limit exceeded")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": time.Until(reset).Seconds(),
			})
		}

		return c.Next()
	}
}

// take records the request in the caller's window and reports whether it
// fits. The window is a redis sorted set of request timestamps; entries
// older than the window are trimmed on every call.
func (rl *RateLimiter) take(ctx context.Context, caller string) (bool, int, time.Time, error) {
	key := "gw:rl:" + caller
	now := time.Now()
	cutoff := now.Add(-rl.window).UnixNano()

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff))
	inWindow := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(inWindow.Val())
	remaining := rl.limit - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < rl.limit, remaining, now.Add(rl.window), nil
}

// GlobalRateLimiter is the gateway-wide default: 100 requests per minute
// per caller.
func GlobalRateLimiter(redisClient *redis.Client) fiber.Handler {
	return NewRateLimiter(redisClient, 100, time.Minute).Middleware()
}
