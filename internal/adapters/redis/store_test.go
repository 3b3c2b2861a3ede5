package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-ui-session/internal/testutil"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestStore_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "tok-123"))

	v, found, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok-123", v)
}

func TestStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStore(client)

	_, found, err := store.Get(context.Background(), "non-existent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SetManyUsesPrefix(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStoreWithPrefix(client, "test-prefix:")
	ctx := context.Background()

	require.NoError(t, store.SetMany(ctx, map[string]string{
		"token": "tok-123",
		"user":  `{"id":1,"name":"Ana"}`,
	}))

	assert.Equal(t, int64(2), client.Exists(ctx, "test-prefix:token", "test-prefix:user").Val())

	v, found, err := store.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":1,"name":"Ana"}`, v)
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "tok"))
	require.NoError(t, store.Remove(ctx, "token", "user"))
	require.NoError(t, store.Remove(ctx, "token", "user"))
	require.NoError(t, store.Remove(ctx))

	_, found, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_RemoveOnlyTouchesPrefix(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStoreWithPrefix(client, "app:")
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "token", "unprefixed", 0).Err())
	require.NoError(t, store.SetMany(ctx, map[string]string{"token": "t", "user": "u"}))

	require.NoError(t, store.Remove(ctx, "token", "user"))

	assert.Equal(t, int64(0), client.Exists(ctx, "app:token", "app:user").Val())
	assert.Equal(t, int64(1), client.Exists(ctx, "token").Val())
}
