package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	rcache "github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares cached values across server instances, fronted by a small
// local TinyLFU so hot keys skip the network.
type RedisStore struct {
	data *rcache.Cache
	ttl  time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{
		data: rcache.New(&rcache.Options{
			Redis:      rdb,
			LocalCache: rcache.NewTinyLFU(1_000, ttl),
		}),
		ttl: ttl,
	}, nil
}

func redisKey(key string) string {
	return "marketplace/" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := s.data.Get(ctx, redisKey(key), &val)
	if errors.Is(err, rcache.ErrCacheMiss) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, val string) error {
	return s.data.Set(&rcache.Item{
		Ctx:   ctx,
		Key:   redisKey(key),
		Value: val,
		TTL:   s.ttl,
	})
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.data.Delete(ctx, redisKey(key))
	if errors.Is(err, rcache.ErrCacheMiss) {
		return nil
	}
	return err
}
