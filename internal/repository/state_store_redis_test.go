package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redisTestPrefix = "sessionstore_test:"

// newTestRedisStore requires a running Redis on localhost:6379 and skips
// otherwise. Keys under redisTestPrefix are flushed before and after.
func newTestRedisStore(t *testing.T) (StateStore, *redis.Client) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	flush := func() {
		iter := client.Scan(ctx, 0, redisTestPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	flush()
	t.Cleanup(func() {
		flush()
		client.Close()
	})
	return NewRedisStateStore(client), client
}

func TestRedisStateStore_RoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	key := redisTestPrefix + "roundtrip"

	ok, err := store.SetEx(ctx, key, time.Minute, []byte("payload"))
	require.NoError(t, err)
	assert.True(t, ok)

	val, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)
}

func TestRedisStateStore_GetMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	val, err := store.Get(context.Background(), redisTestPrefix+"missing")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStateStore_SetExAppliesTTL(t *testing.T) {
	store, client := newTestRedisStore(t)
	ctx := context.Background()
	key := redisTestPrefix + "ttl"

	_, err := store.SetEx(ctx, key, 30*time.Second, []byte("x"))
	require.NoError(t, err)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 25*time.Second)
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestRedisStateStore_Del(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	key := redisTestPrefix + "del"

	_, err := store.SetEx(ctx, key, time.Minute, []byte("x"))
	require.NoError(t, err)

	n, err := store.Del(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Del(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}
