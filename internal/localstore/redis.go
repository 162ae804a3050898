package localstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore prefixes every key with the namespace and refreshes the TTL on write.
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Close implements Store. The client belongs to the caller and is left open.
func (s *redisStore) Close() error {
	return nil
}
