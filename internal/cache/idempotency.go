package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultIdempotencyTTL = 24 * time.Hour

	pendingMarker = "pending"
)

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

// IdempotencyStore maps checkout idempotency keys to the order they produced.
// A key holds "pending" while its checkout runs and the order id afterwards.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (int, bool, error) {
	redisKey := idempotencyKey(key)
	ok, err := s.rdb.SetNX(ctx, redisKey, pendingMarker, s.ttl).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, true, nil
	}

	val, err := s.rdb.Get(ctx, redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET; report in progress and let the client retry
			return 0, false, nil
		}
		return 0, false, err
	}
	if val == pendingMarker {
		return 0, false, nil
	}
	orderID, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value %q for %s", val, key)
	}
	return orderID, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, orderID int) error {
	return s.rdb.Set(ctx, idempotencyKey(key), strconv.Itoa(orderID), s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(key)).Err()
}
