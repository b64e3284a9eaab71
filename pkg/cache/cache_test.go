package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration, opts ...Option[string, int]) (*Cache[string, int], *testClock) {
	clock := &testClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	opts = append(opts, WithClock[string, int](clock.Now))
	return New[string, int](ttl, opts...), clock
}

func TestCacheExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	clock.Advance(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Len())
}

func TestCacheDelete(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCacheMaxEntries(t *testing.T) {
	c, clock := newTestCache(time.Minute, WithMaxEntries[string, int](2))

	c.Set("a", 1)
	clock.Advance(2 * time.Minute)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("d", 4)
	assert.Equal(t, 2, c.Len())
	v, ok := c.Get("d")
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestGetOrLoad(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(ctx, "answer", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	clock.Advance(time.Minute)
	_, err := c.GetOrLoad(ctx, "answer", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := c.GetOrLoad(ctx, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrLoad(ctx, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
