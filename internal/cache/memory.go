package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemoryStore struct {
	data *expirable.LRU[string, string]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{data: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.data.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key, val string) error {
	s.data.Add(key, val)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.data.Remove(key)
	return nil
}
