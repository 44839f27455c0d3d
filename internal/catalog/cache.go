package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	productListKey   = "pos:catalog:products"
	productKeyPrefix = "pos:catalog:product:"
)

// Cache keeps catalog snapshots in Redis so terminals can render product
// forms without hitting Postgres on every keystroke-driven preview.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops the cached product list and one product entry. It is
// called after catalog edits land.
func (c *Cache) Invalidate(ctx context.Context, productID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	keys := []string{productListKey}
	if productID != "" {
		keys = append(keys, productKeyPrefix+productID)
	}
	return c.client.Del(ctx, keys...).Err()
}
