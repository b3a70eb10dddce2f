package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/quintaldo/pos-engine/pkg/logger"
)

// CacheConfig sets per-surface TTLs for engine reads. Stock reads go stale
// the moment a sale commits, so they get a much shorter TTL than sale
// lookups.
type CacheConfig struct {
	SalesTTL time.Duration
	StockTTL time.Duration
}

// DefaultCacheConfig returns the default read-cache TTLs.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		SalesTTL: time.Minute,
		StockTTL: 15 * time.Second,
	}
}

// cacheNamespace buckets cacheable paths; empty means don't cache.
func cacheNamespace(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/sales"):
		return "sales"
	case strings.HasPrefix(path, "/api/stock"):
		return "stock"
	default:
		return ""
	}
}

// CacheMiddleware caches successful GET responses from the engine in redis,
// namespaced per surface. A mutation under a namespace purges that whole
// namespace, so a cancelled sale or a stock movement is never served stale.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}

		ns := cacheNamespace(c.Path())
		if ns == "" {
			return c.Next()
		}

		if c.Method() != fiber.MethodGet {
			err := c.Next()
			if c.Response().StatusCode() < 300 {
				purgeNamespace(c, redisClient, ns)
			}
			return err
		}

		key := cacheKey(c, ns)
		ctx := c.UserContext()

		if cached, err := redisClient.Get(ctx, key).Bytes(); err == nil && len(cached) > 0 {
			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err := c.Next()

		if c.Response().StatusCode() == fiber.StatusOK {
			ttl := config.SalesTTL
			if ns == "stock" {
				ttl = config.StockTTL
			}
			body := c.Response().Body()
			if setErr := redisClient.Set(ctx, key, body, ttl).Err(); setErr != nil {
				logger.Logger.Warn().Err(setErr).Str("cache_key", key).Msg("Failed to cache engine response")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// cacheKey scopes a read to its namespace, path, query and caller identity,
// so one terminal never sees another organization's sale.
func cacheKey(c *fiber.Ctx, ns string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s",
		c.Path(),
		c.Request().URI().QueryString(),
		c.Get("Authorization"),
	)))
	return "gw:" + ns + ":" + hex.EncodeToString(sum[:])
}

// purgeNamespace drops every cached read in a namespace after a mutation.
func purgeNamespace(c *fiber.Ctx, redisClient *redis.Client, ns string) {
	ctx := c.UserContext()
	iter := redisClient.Scan(ctx, 0, "gw:"+ns+":*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("namespace", ns).Msg("Cache purge scan failed")
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := redisClient.Del(ctx, keys...).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("namespace", ns).Msg("Cache purge failed")
		return
	}

	logger.Logger.Debug().
		Str("namespace", ns).
		Int("purged", len(keys)).
		Str("path", c.Path()).
		Msg("Read cache purged after mutation")
}
