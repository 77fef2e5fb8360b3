// internal/lock/redis_test.go
package lock

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bike-wallet/internal/util"
)

func setupRedisLocker(t *testing.T, opts RedisOptions) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisLocker(client, opts, util.DiscardLogger()), mr
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	l, mr := setupRedisLocker(t, RedisOptions{})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisLockPrefix+"client-1"))

	unlock()
	assert.False(t, mr.Exists(redisLockPrefix+"client-1"))

	unlock, err = l.Lock(ctx, "client-1")
	require.NoError(t, err)
	unlock()
}

func TestRedisLockerTimesOutWhileHeld(t *testing.T) {
	l, _ := setupRedisLocker(t, RedisOptions{WaitTimeout: 50 * time.Millisecond, RetryBackoff: 5 * time.Millisecond})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "client-1")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(ctx, "client-1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisLockerWaitsForRelease(t *testing.T) {
	l, _ := setupRedisLocker(t, RedisOptions{WaitTimeout: time.Second, RetryBackoff: 5 * time.Millisecond})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "client-1")
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		unlock()
	}()

	unlock2, err := l.Lock(ctx, "client-1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerDoesNotReleaseForeignToken(t *testing.T) {
	l, mr := setupRedisLocker(t, RedisOptions{TTL: time.Second})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "client-1")
	require.NoError(t, err)

	// The lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(redisLockPrefix+"client-1", "other-holder"))

	unlock()
	value, err := mr.Get(redisLockPrefix + "client-1")
	require.NoError(t, err)
	assert.Equal(t, "other-holder", value)
}
