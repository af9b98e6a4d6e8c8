package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newRedisStore(client, "jogadas:", newTestLogger()), mr
}

func TestRedisIncrement_ExistingKey(t *testing.T) {
	st, mr := newMiniRedisStore(t)
	require.NoError(t, mr.Set("jogadas:partidas", "10"))

	v, err := st.Increment(context.Background(), "partidas")
	require.NoError(t, err)
	assert.Equal(t, int64(11), v)

	got, err := mr.Get("jogadas:partidas")
	require.NoError(t, err)
	assert.Equal(t, "11", got)
}

func TestRedisIncrement_MissingKeyIsNotCreated(t *testing.T) {
	st, mr := newMiniRedisStore(t)

	_, err := st.Increment(context.Background(), "inexistente")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("jogadas:inexistente"))
}

func TestRedisIncrement_NonIntegerValue(t *testing.T) {
	st, mr := newMiniRedisStore(t)
	require.NoError(t, mr.Set("jogadas:quebrado", "abc"))

	_, err := st.Increment(context.Background(), "quebrado")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisIncrement_ServerDown(t *testing.T) {
	st, mr := newMiniRedisStore(t)
	mr.Close()

	_, err := st.Increment(context.Background(), "partidas")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, st.Ping(context.Background()))
}

func TestRedisGet(t *testing.T) {
	st, mr := newMiniRedisStore(t)
	require.NoError(t, mr.Set("jogadas:partidas", "3"))

	c, err := st.Get(context.Background(), "partidas")
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.Value)

	_, err = st.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisIncrement_Concurrent(t *testing.T) {
	st, mr := newMiniRedisStore(t)
	require.NoError(t, mr.Set("jogadas:partidas", "100"))

	got := incrementConcurrently(t, st, "partidas", 40)
	assert.Equal(t, expectedRange(101, 40), got)
}
