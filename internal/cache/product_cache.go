// Package cache holds the Redis-backed product cache and checkout idempotency store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/entity"
)

const DefaultProductTTL = 5 * time.Minute

func productKey(productID int) string {
	return fmt.Sprintf("product:%d", productID)
}

// ProductCache stores products as JSON under product:<id>.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) Get(ctx context.Context, productID int) (*entity.Product, error) {
	val, err := c.rdb.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var product entity.Product
	if err := json.Unmarshal(val, &product); err != nil {
		return nil, fmt.Errorf("unmarshal cached product %d: %w", productID, err)
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *entity.Product) error {
	val, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), val, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, productIDs ...int) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productKey(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}
