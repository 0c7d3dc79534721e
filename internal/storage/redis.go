package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
)

// RedisStore persists the cart snapshot in Redis. Same payload as the
// SQLite store, no TTL: the snapshot lives until the next write.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	data, err := r.client.Get(ctx, snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot failed: %w", err)
	}

	return items, nil
}

func (r *RedisStore) Save(ctx context.Context, items []cart.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func snapshotKey() string {
	return fmt.Sprintf("cart:%s", SnapshotKey)
}
