package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// KeyLocker hands out short lived exclusive locks keyed by lock:{key}.
type KeyLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

func NewKeyLocker(client *goredis.Client, ttl time.Duration) *KeyLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &KeyLocker{
		locker: redislock.New(client),
		ttl:    ttl,
	}
}

// Acquire obtains the lock without waiting. ErrInFlight is returned when another holder has it.
func (k *KeyLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := k.locker.Obtain(ctx, "lock:"+key, k.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, orchestrator_errors.ErrInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock: %w", err)
	}
	return func() {
		// Release uses its own context so an expired request context still frees the key.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = lock.Release(ctx)
	}, nil
}
