package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quintaldo/pos-engine/internal/catalog/domain"
	"github.com/quintaldo/pos-engine/pkg/logger"
)

// CachedPaymentMethods fronts a PaymentMethods lookup with Redis. Payment
// methods change rarely, so a short TTL is enough and cache errors fall
// through to the database.
type CachedPaymentMethods struct {
	inner domain.PaymentMethods
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedPaymentMethods creates a cached payment method lookup
func NewCachedPaymentMethods(inner domain.PaymentMethods, redisClient *redis.Client, ttl time.Duration) *CachedPaymentMethods {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedPaymentMethods{inner: inner, redis: redisClient, ttl: ttl}
}

func (c *CachedPaymentMethods) key(orgID, id uint) string {
	return fmt.Sprintf("paymethod:%d:%d", orgID, id)
}

func (c *CachedPaymentMethods) IsActive(ctx context.Context, orgID, id uint) (bool, error) {
	if c.redis != nil {
		val, err := c.redis.Get(ctx, c.key(orgID, id)).Result()
		if err == nil {
			return val == "1", nil
		}
		if err != redis.Nil {
			logger.Warn(ctx).Err(err).Msg("Payment method cache read failed")
		}
	}

	active, err := c.inner.IsActive(ctx, orgID, id)
	if err != nil {
		return false, err
	}

	if c.redis != nil {
		val := "0"
		if active {
			val = "1"
		}
		if err := c.redis.Set(ctx, c.key(orgID, id), val, c.ttl).Err(); err != nil {
			logger.Warn(ctx).Err(err).Msg("Payment method cache write failed")
		}
	}

	return active, nil
}
