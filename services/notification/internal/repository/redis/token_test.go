package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client), mr
}

func TestTokenStore_Get(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("device_token:user-1", "ExponentPushToken[abc]"))

	token, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[abc]", token)
}

func TestTokenStore_Get_Missing(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("device_token:user-2", ""))

	for _, user := range []string{"user-1", "user-2"} {
		_, err := store.Get(context.Background(), user)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, user)
	}
}

func TestTokenStore_Get_RedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTokenStore_Delete(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("device_token:user-1", "stale"))

	require.NoError(t, store.Delete(context.Background(), "user-1", "stale"))
	assert.False(t, mr.Exists("device_token:user-1"))
}

func TestTokenStore_Delete_KeepsReregisteredToken(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("device_token:user-1", "fresh"))

	require.NoError(t, store.Delete(context.Background(), "user-1", "stale"))

	got, err := mr.Get("device_token:user-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestTokenStore_Delete_Missing(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "user-1", "stale"))
}
