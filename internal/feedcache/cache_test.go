// SPDX-License-Identifier: MIT

package feedcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/log"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(config.RedisConfig{
		Addr:    mr.Addr(),
		FeedTTL: 30 * time.Second,
	}, log.WithComponent("feedcache"))
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestDisabledWithoutAddr(t *testing.T) {
	c, err := New(config.RedisConfig{}, log.WithComponent("feedcache"))
	require.NoError(t, err)
	assert.Nil(t, c)

	// All operations on a nil cache are safe no-ops.
	ctx := context.Background()
	_, ok := c.Get(ctx, "index", 1)
	assert.False(t, ok)
	c.Set(ctx, "index", 1, []byte("x"))
	c.Invalidate(ctx)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "index", 1)
	assert.False(t, ok, "cold cache must miss")

	c.Set(ctx, "index", 1, []byte(`{"items":[]}`))
	payload, ok := c.Get(ctx, "index", 1)
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(payload))

	// Different page is a different key.
	_, ok = c.Get(ctx, "index", 2)
	assert.False(t, ok)
}

func TestInvalidateMakesEntriesUnreachable(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "index", 1, []byte("v1"))
	_, ok := c.Get(ctx, "index", 1)
	require.True(t, ok)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx, "index", 1)
	assert.False(t, ok, "generation bump must hide stale entries")

	c.Set(ctx, "index", 1, []byte("v2"))
	payload, ok := c.Get(ctx, "index", 1)
	require.True(t, ok)
	assert.Equal(t, "v2", string(payload))
}

func TestEntriesExpireByTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "index", 1, []byte("v1"))
	mr.FastForward(time.Minute)

	_, ok := c.Get(ctx, "index", 1)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	c, mr := newTestCache(t)
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
