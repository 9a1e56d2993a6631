package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_ClaimReplayRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()
	key := "POST:/api/v1/expenses:alice:k-1"

	taken, stored, err := store.CheckAndSet(ctx, key, nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, taken)
	assert.Nil(t, stored)
	assert.Equal(t, time.Minute, mr.TTL(store.prefix+key))

	// A concurrent retry sees the in-flight marker.
	taken, stored, err = store.CheckAndSet(ctx, key, nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.Equal(t, PendingMarker, string(stored))

	envelope := []byte(`{"status":201,"body":{"id":"exp-1"}}`)
	require.NoError(t, store.Update(ctx, key, envelope, time.Hour))

	taken, stored, err = store.CheckAndSet(ctx, key, nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.JSONEq(t, string(envelope), string(stored))
	assert.Equal(t, time.Hour, mr.TTL(store.prefix+key))

	require.NoError(t, store.Release(ctx, key))
	assert.False(t, mr.Exists(store.prefix+key))

	taken, _, err = store.CheckAndSet(ctx, key, nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, taken, "released key is claimable again")
}

func TestIdempotencyStore_CheckAndSetWithResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)

	taken, _, err := store.CheckAndSet(context.Background(), "direct", []byte("done"), time.Minute)
	require.NoError(t, err)
	assert.False(t, taken)

	got, err := mr.Get(store.prefix + "direct")
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestIdempotencyStore_KeysArePrefixed(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)

	_, _, err := store.CheckAndSet(context.Background(), "k", nil, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, []string{"splitledger:idempotency:k"}, mr.Keys())
}

func TestIdempotencyStore_ServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	mr.Close()

	ctx := context.Background()
	_, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	assert.Error(t, err)
	assert.Error(t, store.Update(ctx, "k", []byte("x"), time.Minute))
	assert.Error(t, store.Release(ctx, "k"))
}
