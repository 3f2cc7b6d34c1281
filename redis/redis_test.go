package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	var out map[string]any
	found, err := cache.Get(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "k", map[string]any{"theme": "dark"}, time.Minute))
	found, err = cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", out["theme"])

	require.NoError(t, cache.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestCache_WithoutClient(t *testing.T) {
	cache := NewCache(nil)
	var out string
	_, err := cache.Get(context.Background(), "k", &out)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, cache.Set(context.Background(), "k", "v", 0), ErrUnavailable)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, NewClient(context.Background(), addr, ""))
}
