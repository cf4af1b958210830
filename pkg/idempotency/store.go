package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store answers "has this key been used before" with a redis SetNX, so
// retried checkout requests carrying the same Idempotency-Key are rejected
// instead of creating a second order.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(principalID, operation, clientKey string) string {
	return fmt.Sprintf("idem:%s:%s:%s", principalID, operation, clientKey)
}

func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}
