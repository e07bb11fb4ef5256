package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hms/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SlotCache stores computed slot lists per provider, date and duration.
// A cache failure never fails the request.
type SlotCache interface {
	Get(ctx context.Context, providerID, date string, duration int) ([]models.Slot, bool)
	// Generation returns the provider's invalidation counter. Read it before
	// loading the appointments a slot list is computed from.
	Generation(ctx context.Context, providerID string) int64
	// Set stores slots unless the provider was invalidated after gen was read.
	Set(ctx context.Context, providerID, date string, duration int, gen int64, slots []models.Slot)
	Invalidate(ctx context.Context, providerID, date string)
	InvalidateProvider(ctx context.Context, providerID string)
}

// errStaleGeneration aborts a cache write racing an invalidation.
var errStaleGeneration = errors.New("slot cache generation moved")

const generationTTL = 24 * time.Hour

func slotCacheKey(providerID, date string, duration int) string {
	return fmt.Sprintf("slots:%s:%s:%d", providerID, date, duration)
}

func slotGenerationKey(providerID string) string {
	return "slotgen:" + providerID
}

// RedisSlotCache keeps slot lists as JSON with a short TTL.
type RedisSlotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSlotCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSlotCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSlotCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *RedisSlotCache) Get(ctx context.Context, providerID, date string, duration int) ([]models.Slot, bool) {
	raw, err := c.rdb.Get(ctx, slotCacheKey(providerID, date, duration)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("slot cache read failed", zap.String("providerId", providerID), zap.Error(err))
		}
		return nil, false
	}
	var slots []models.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("slot cache entry corrupt", zap.String("providerId", providerID), zap.Error(err))
		return nil, false
	}
	return slots, true
}

// Generation returns -1 when Redis cannot be read, which makes the following Set a no-op.
func (c *RedisSlotCache) Generation(ctx context.Context, providerID string) int64 {
	gen, err := c.rdb.Get(ctx, slotGenerationKey(providerID)).Int64()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		c.logger.Warn("slot cache generation read failed", zap.String("providerId", providerID), zap.Error(err))
		return -1
	}
	return gen
}

func (c *RedisSlotCache) Set(ctx context.Context, providerID, date string, duration int, gen int64, slots []models.Slot) {
	if c.ttl <= 0 || gen < 0 {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	genKey := slotGenerationKey(providerID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, slotCacheKey(providerID, date, duration), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("slot cache write skipped after invalidation", zap.String("providerId", providerID), zap.String("date", date))
	default:
		c.logger.Warn("slot cache write failed", zap.String("providerId", providerID), zap.Error(err))
	}
}

// Invalidate drops every duration variant cached for one provider and date.
func (c *RedisSlotCache) Invalidate(ctx context.Context, providerID, date string) {
	c.bumpGeneration(ctx, providerID)
	c.deleteMatching(ctx, fmt.Sprintf("slots:%s:%s:*", providerID, date))
}

func (c *RedisSlotCache) InvalidateProvider(ctx context.Context, providerID string) {
	c.bumpGeneration(ctx, providerID)
	c.deleteMatching(ctx, fmt.Sprintf("slots:%s:*", providerID))
}

func (c *RedisSlotCache) bumpGeneration(ctx context.Context, providerID string) {
	key := slotGenerationKey(providerID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, generationTTL)
		return nil
	})
	if err != nil {
		c.logger.Warn("slot cache generation bump failed", zap.String("providerId", providerID), zap.Error(err))
	}
}

func (c *RedisSlotCache) deleteMatching(ctx context.Context, pattern string) {
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("slot cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("slot cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// NoopSlotCache disables caching.
type NoopSlotCache struct{}

func (NoopSlotCache) Get(context.Context, string, string, int) ([]models.Slot, bool) {
	return nil, false
}

func (NoopSlotCache) Generation(context.Context, string) int64 { return 0 }
func (NoopSlotCache) Set(context.Context, string, string, int, int64, []models.Slot) {}
func (NoopSlotCache) Invalidate(context.Context, string, string) {}
func (NoopSlotCache) InvalidateProvider(context.Context, string) {}
