package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/storefront-service/internal/domain"
)

const productKeyPrefix = "product:"

var errCacheMiss = errors.New("cache miss")

// kvStore is the narrow key-value contract the product cache needs. The
// production implementation is Redis.
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
}

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, err
	}
	return raw, nil
}

func (s redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s redisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// ProductCache is a read-through cache for catalog entries. A nil cache or an
// unreachable backend degrades to plain storage reads; cache failures are
// never surfaced to callers.
type ProductCache struct {
	store kvStore
	ttl   time.Duration
}

// NewProductCache builds a cache over the given Redis client. A nil client
// produces a disabled cache.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if client == nil {
		return &ProductCache{ttl: ttl}
	}
	return &ProductCache{store: redisStore{client: client}, ttl: ttl}
}

// Get returns a cached product and whether it was present.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, productKeyPrefix+id)
	if err != nil {
		return nil, false
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, false
	}
	return &product, true
}

// Set stores a product for the configured TTL.
func (c *ProductCache) Set(ctx context.Context, product *domain.Product) {
	if c == nil || c.store == nil || product == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, productKeyPrefix+product.ID, raw, c.ttl)
}

// Invalidate drops the cached entry for a product.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.store == nil {
		return
	}
	_ = c.store.Del(ctx, productKeyPrefix+id)
}
