package cart

import (
	"context"
	"errors"
	"sync"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache fronts the cart store for reads. It is best-effort: a failing cache
// never fails the request.
type Cache interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Set(ctx context.Context, userID string, c *Cart) error
	Delete(ctx context.Context, userID string) error
}

type MemCache struct {
	mu sync.RWMutex
	m  map[string]*Cart
}

func NewMemCache() *MemCache {
	return &MemCache{m: map[string]*Cart{}}
}

func (c *MemCache) Get(ctx context.Context, userID string) (*Cart, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.m[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return cached.Clone(), nil
}

func (c *MemCache) Set(ctx context.Context, userID string, cc *Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[userID] = cc.Clone()
	return nil
}

func (c *MemCache) Delete(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, userID)
	return nil
}
