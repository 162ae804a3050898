// Package localstore is the widget's per-origin key-value storage. Keys
// written through one namespace are invisible to every other namespace.
package localstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Common errors for local store operations.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrClosed           = errors.New("store closed")
)

// Store holds string values under string keys. Get reports a missing key
// with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StoreType represents the type of local store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeBolt   StoreType = "bolt"
	StoreTypeRedis  StoreType = "redis"
)

// StoreOption is a functional option for configuring a local store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	namespace   string
	boltPath    string
	redisClient *redis.Client
	redisTTL    time.Duration
}

// WithNamespace scopes every key to the given origin.
func WithNamespace(namespace string) StoreOption {
	return func(c *storeConfig) {
		c.namespace = namespace
	}
}

// WithBoltPath sets the database file for the bolt store.
func WithBoltPath(path string) StoreOption {
	return func(c *storeConfig) {
		c.boltPath = path
	}
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for Redis keys.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// NewStore creates a Store of the given type.
// The bolt store requires WithBoltPath and the Redis store WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{namespace: "default"}
	for _, opt := range opts {
		opt(config)
	}
	if config.namespace == "" {
		return nil, ErrInvalidConfig
	}

	switch storeType {
	case StoreTypeMemory:
		return newMemoryStore(config.namespace), nil

	case StoreTypeBolt:
		if config.boltPath == "" {
			return nil, ErrInvalidConfig
		}
		return openBoltStore(config.boltPath, config.namespace)

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = 30 * 24 * time.Hour
		}
		return &redisStore{
			client: config.redisClient,
			prefix: "whisp:" + config.namespace + ":",
			ttl:    ttl,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
