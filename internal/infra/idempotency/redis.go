// Package idempotency remembers which payment submissions were already accepted.
package idempotency

import (
	"context"
	"time"

	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(scope, key string) string {
	return "idemp:" + scope + ":" + key
}

func (s *RedisStore) TryClaim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, redisKey(scope, key), "1", s.ttl).Result()
	if err != nil {
		return false, errs.Mark(errs.Wrap(err, "idempotency claim"), errs.ErrServiceUnavailable)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	if err := s.rdb.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		return errs.Wrap(err, "idempotency release")
	}
	return nil
}

var _ shared.IdempotencyStore = (*RedisStore)(nil)
