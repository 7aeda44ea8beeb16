package cart

import (
	"context"
	"sync"
	"time"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]*Cart
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]*Cart{}}
}

func (s *MemStore) Load(ctx context.Context, userID string) (*Cart, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.m[userID]
	if !ok {
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

func (s *MemStore) Save(ctx context.Context, c *Cart) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.UserID] = c.Clone()
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
