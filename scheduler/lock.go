package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker guards one sweep across replicas. Acquire reports false when another
// holder owns the lock.
type Locker interface {
	Acquire(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}

const SweepLockKey = "lending:sweep:overdue"

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLock struct {
	rdb *redis.Client
	key string
}

func NewRedisLock(rdb *redis.Client, key string) *RedisLock {
	if key == "" {
		key = SweepLockKey
	}
	return &RedisLock{rdb: rdb, key: key}
}

func (l *RedisLock) Acquire(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}
	return release, true, nil
}

// LocalLock is used when the process runs alone (no Redis configured).
type LocalLock struct{}

func (LocalLock) Acquire(context.Context, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
