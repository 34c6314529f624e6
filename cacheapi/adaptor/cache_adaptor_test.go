package cachewrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davsync/cacheapi"
)

func TestExpirableLru(t *testing.T) {
	ctx := context.Background()
	c := NewExpirableLruCache[string, int](2, time.Minute)
	assert.NoError(t, c.Set(ctx, "a", 1))
	assert.NoError(t, c.Set(ctx, "b", 2))
	assert.NoError(t, c.Set(ctx, "c", 3))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, cacheapi.ErrCacheKeyNotExist)
	v, err := c.Get(ctx, "c")
	assert.NoError(t, err)
	assert.Equal(t, 3, v)

	assert.NoError(t, c.Del(ctx, "c"))
	_, err = c.Get(ctx, "c")
	assert.ErrorIs(t, err, cacheapi.ErrCacheKeyNotExist)

	assert.NoError(t, c.Purge(ctx))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, cacheapi.ErrCacheKeyNotExist)
}

func TestExpirableLruTTL(t *testing.T) {
	ctx := context.Background()
	c := NewExpirableLruCache[string, int](10, 50*time.Millisecond)
	assert.NoError(t, c.Set(ctx, "a", 1))
	time.Sleep(120 * time.Millisecond)
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, cacheapi.ErrCacheKeyNotExist)
}
