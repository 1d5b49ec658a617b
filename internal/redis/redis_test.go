package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"content-orchestrator/internal/redis"
	"content-orchestrator/internal/testutil"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	rl := redis.NewRateLimiter(client, redis.RateLimitConfig{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		res, err := rl.Allow(ctx, "bulk", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := rl.Allow(ctx, "bulk", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	other, err := rl.Allow(ctx, "webhook", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	mr.FastForward(time.Minute + time.Second)
	res, err = rl.Allow(ctx, "bulk", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestCacheStore_Accounts(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	cache := redis.NewCacheStore(client, redis.CacheConfig{AccountsTTL: time.Minute})

	miss, err := cache.GetAccounts(ctx, "ws_1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.SetAccounts(ctx, "ws_1", []json.RawMessage{json.RawMessage(`{"id":"acc_1"}`)}))
	hit, err := cache.GetAccounts(ctx, "ws_1")
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.JSONEq(t, `{"id":"acc_1"}`, string(hit[0]))

	mr.FastForward(2 * time.Minute)
	expired, err := cache.GetAccounts(ctx, "ws_1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestKeyLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewRedis(t)
	locker := redis.NewKeyLocker(client, time.Minute)

	release, err := locker.Acquire(ctx, "ws_1:k1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "ws_1:k1")
	assert.ErrorIs(t, err, orchestrator_errors.ErrInFlight)

	other, err := locker.Acquire(ctx, "ws_1:k2")
	require.NoError(t, err)
	other()

	release()
	again, err := locker.Acquire(ctx, "ws_1:k1")
	require.NoError(t, err)
	again()
}
