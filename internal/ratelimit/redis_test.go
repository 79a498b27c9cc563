package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_Incr(t *testing.T) {
	store, mr := setupRedisStore(t)

	t.Run("increments and returns the running count", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := store.Incr(context.Background(), "ratelimit:sess:202506011230", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("sets a ttl on the counter", func(t *testing.T) {
		_, err := store.Incr(context.Background(), "ratelimit:other:202506011231", 2*time.Minute)
		require.NoError(t, err)

		ttl := mr.TTL("ratelimit:other:202506011231")
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, 2*time.Minute)
	})

	t.Run("expired counter starts over", func(t *testing.T) {
		key := "ratelimit:expiry:202506011232"
		_, err := store.Incr(context.Background(), key, time.Minute)
		require.NoError(t, err)

		mr.FastForward(2 * time.Minute)

		got, err := store.Incr(context.Background(), key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})
}

func TestLimiter_WithRedisStore(t *testing.T) {
	store, _ := setupRedisStore(t)
	base := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	l := New(store, 2, WithClock(func() time.Time { return base }))

	res, err := l.Allow(context.Background(), "sess-redis")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)

	res, err = l.Allow(context.Background(), "sess-redis")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, err = l.Allow(context.Background(), "sess-redis")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}
