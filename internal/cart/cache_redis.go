package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheBaseTTL   = 15 * time.Minute
	cacheJitterMin = 5
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, userID string) (*Cart, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cc Cart
	if err := json.Unmarshal(data, &cc); err != nil {
		return nil, fmt.Errorf("unmarshal cached cart: %w", err)
	}
	return &cc, nil
}

func (c *RedisCache) Set(ctx context.Context, userID string, cc *Cart) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	// jitter spreads expiry so a burst of carts does not fall out at once
	ttl := cacheBaseTTL + time.Duration(rand.Intn(cacheJitterMin))*time.Minute
	if err := c.client.Set(ctx, cacheKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return "cart:" + userID
}
