// Package cache keeps aggregated shopping lists in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/logger"
)

// DefaultTTL bounds staleness if an invalidation is lost.
const DefaultTTL = 5 * time.Minute

// generationTTL outlives any in-flight download by a wide margin.
const generationTTL = 24 * time.Hour

// ShoppingListKey returns the cache key of a user's list.
func ShoppingListKey(userID uint) string {
	return fmt.Sprintf("shopping_list:%d", userID)
}

// GenerationKey returns the key of the counter bumped on every invalidation of a user's list.
func GenerationKey(userID uint) string {
	return fmt.Sprintf("shopping_list_gen:%d", userID)
}

// RedisShoppingListCache implements ShoppingListCache on Redis
type RedisShoppingListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisShoppingListCache creates a cache with the given entry TTL
func NewRedisShoppingListCache(client *redis.Client, ttl time.Duration) *RedisShoppingListCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisShoppingListCache{client: client, ttl: ttl}
}

func (c *RedisShoppingListCache) Get(ctx context.Context, userID uint) ([]domain.ShoppingItem, bool, error) {
	raw, err := c.client.Get(ctx, ShoppingListKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read shopping list cache: %w", err)
	}

	var items []domain.ShoppingItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Set.
		logger.Warn(ctx).Err(err).Uint("user_id", userID).Msg("Discarding unreadable shopping list cache entry")
		return nil, false, nil
	}
	return items, true, nil
}

// Version returns the user's invalidation generation, 0 when none happened yet.
func (c *RedisShoppingListCache) Version(ctx context.Context, userID uint) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list generation: %w", err)
	}
	return gen, nil
}

// Set stores items only while the generation still equals version.
// A list built before a concurrent invalidation is dropped.
func (c *RedisShoppingListCache) Set(ctx context.Context, userID uint, version int64, items []domain.ShoppingItem) error {
	if items == nil {
		items = []domain.ShoppingItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode shopping list: %w", err)
	}

	genKey := GenerationKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		gen, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			gen, err = 0, nil
		}
		if err != nil {
			return err
		}
		if gen != version {
			logger.Debug(ctx).Uint("user_id", userID).Msg("Shopping list changed while building, not caching")
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ShoppingListKey(userID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		logger.Debug(ctx).Uint("user_id", userID).Msg("Shopping list invalidated during write, not caching")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write shopping list cache: %w", err)
	}
	return nil
}

func (c *RedisShoppingListCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range userIDs {
			keys[i] = ShoppingListKey(id)
			pipe.Incr(ctx, GenerationKey(id))
			pipe.Expire(ctx, GenerationKey(id), generationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate shopping lists: %w", err)
	}
	logger.Debug(ctx).Int("users", len(userIDs)).Msg("Shopping list cache invalidated")
	return nil
}

// Nop is a ShoppingListCache that never hits.
type Nop struct{}

func (Nop) Get(context.Context, uint) ([]domain.ShoppingItem, bool, error) { return nil, false, nil }
func (Nop) Version(context.Context, uint) (int64, error)                   { return 0, nil }
func (Nop) Set(context.Context, uint, int64, []domain.ShoppingItem) error  { return nil }
func (Nop) Invalidate(context.Context, ...uint) error                      { return nil }
