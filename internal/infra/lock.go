package infra

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockHeld is returned when another process holds the lock.
var ErrLockHeld = errors.New("lock held by another process")

// RedisLocker hands out short-lived exclusive locks backed by Redis.
// A nil client, or a Redis error other than contention, lets the caller
// proceed unlocked with a warning.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	if rdb == nil {
		return &RedisLocker{}
	}
	return &RedisLocker{client: redislock.New(rdb)}
}

// Acquire obtains key for ttl and returns the function that releases it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l == nil || l.client == nil {
		log.Warn().Str("key", key).Msg("redis lock not ready; proceeding without redis lock")
		return func() {}, nil
	}

	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("error obtaining redis lock; proceeding without redis lock")
		return func() {}, nil
	}

	return func() {
		// the caller's context may already be cancelled when the job ends
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("key", key).Msg("redis lock release failed")
		}
	}, nil
}
