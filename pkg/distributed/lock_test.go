package distributed

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a disposable Redis database: REELHUB_TEST_REDIS_ADDR=localhost:6379.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REELHUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("REELHUB_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 14})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.FlushDB(context.Background()).Err())
	return client
}

func TestLock_Exclusive(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	first := NewLock(client, "test:lock", time.Minute)
	second := NewLock(client, "test:lock", time.Minute)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = second.Acquire(ctx, 150*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotAcquired)

	assert.ErrorIs(t, second.Release(ctx), ErrNotHeld)
	require.NoError(t, first.Release(ctx))

	require.NoError(t, second.Acquire(ctx, time.Second))
	require.NoError(t, second.Release(ctx))
}

func TestLock_ExpiresWithoutRelease(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	crashed := NewLock(client, "test:lease", 200*time.Millisecond)
	ok, err := crashed.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	next := NewLock(client, "test:lease", time.Minute)
	require.NoError(t, next.Acquire(ctx, 2*time.Second))
	assert.ErrorIs(t, crashed.Release(ctx), ErrNotHeld)
}

func TestWithLock_Serializes(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(ctx, client, "test:serial", time.Minute, 5*time.Second, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestWithLock_ReturnsCallbackError(t *testing.T) {
	client := testClient(t)
	boom := errors.New("boom")

	err := WithLock(context.Background(), client, "test:err", time.Minute, time.Second, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := client.Exists(context.Background(), "test:err").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
