// Package lock provides a Redis-backed booking.Locker so several server
// instances serialise changes to the same room.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/booking"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker takes locks with SET NX PX.  TTL bounds how long a crashed
// holder can block a room; Retry is the polling interval while waiting.
// The TTL is never extended, so it must exceed the longest room
// transaction.  A release that finds the key gone or re-taken is logged.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *zap.Logger
}

var _ booking.Locker = (*RedisLocker)(nil)

// NewRedisLocker returns a locker storing keys under prefix.
func NewRedisLocker(rdb *redis.Client, prefix string, ttl, retry time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{rdb: rdb, prefix: prefix, ttl: ttl, retry: retry, log: log}
}

// Lock implements booking.Locker.  It polls until the key is free or ctx is
// done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	full := l.prefix + ":" + key
	token := uuid.NewString()

	t := time.NewTicker(l.retry)
	defer t.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis lock %s: %w", full, err)
		}
		if ok {
			return l.unlocker(full, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (l *RedisLocker) unlocker(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be cancelled; release on a fresh one.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int()
			switch {
			case err != nil:
				l.log.Warn("room lock release failed", zap.String("key", key), zap.Error(err))
			case n == 0:
				l.log.Warn("room lock expired before release", zap.String("key", key), zap.Duration("ttl", l.ttl))
			}
		})
	}
}
