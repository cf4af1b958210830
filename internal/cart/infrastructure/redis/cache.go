package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gocommerce/commerce-backend/internal/cart/application"
)

const defaultTTL = 15 * time.Minute

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb, ttl: defaultTTL}
}

func key(userID string) string { return "cart:" + userID }

func (c *Cache) Get(ctx context.Context, userID string) (*application.CartView, error) {
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, application.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var view application.CartView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Cache) Set(ctx context.Context, userID string, view *application.CartView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(userID), raw, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, key(userID)).Err()
}
