package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()
	key := sessionKeyPrefix + "u1"

	mock.ExpectGet(key).RedisNil()
	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectSet(key, []byte(`{"stage":"idle"}`), time.Hour).SetVal("OK")
	require.NoError(t, store.Put(ctx, "u1", []byte(`{"stage":"idle"}`)))

	mock.ExpectGet(key).SetVal(`{"stage":"idle"}`)
	raw, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"idle"}`, string(raw))

	mock.ExpectDel(key).SetVal(1)
	require.NoError(t, store.Delete(ctx, "u1"))

	mock.ExpectGet(key).SetErr(redis.ErrClosed)
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, redis.ErrClosed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", []byte("a")))
	raw, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a", string(raw))

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "u1", []byte("b")))
	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionStore_PutSweepsExpiredSessions(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "gone-1", []byte("a")))
	require.NoError(t, store.Put(ctx, "gone-2", []byte("b")))
	assert.Equal(t, 2, store.size())

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Put(ctx, "u1", []byte("c")))
	assert.Equal(t, 1, store.size())

	raw, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c", string(raw))
}
