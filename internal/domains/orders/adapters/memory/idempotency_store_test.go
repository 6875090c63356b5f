package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
)

func TestIdempotencyStoreSaveAndReplay(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	missing, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	record := ports.IdempotencyRecord{Key: "k1", Session: "s1", RequestHash: "h1", OrderID: "o1"}
	saved, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, fixed, saved.CreatedAt)

	again, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, "o1", again.OrderID)

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.RequestHash)
}

func TestIdempotencyStoreConflict(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", Session: "s1", RequestHash: "h1", OrderID: "o1"})
	require.NoError(t, err)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", Session: "s2", RequestHash: "h1", OrderID: "o2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "o1", existing.OrderID)
}

func TestIdempotencyStoreKeysExpire(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(
		WithRetention(time.Hour),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", Session: "s1", RequestHash: "h1", OrderID: "o1"})
	require.NoError(t, err)
	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k2", Session: "s1", RequestHash: "h2", OrderID: "o2"})
	require.NoError(t, err)

	now = now.Add(time.Hour)
	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// an expired key can be bound to a new order
	rebound, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", Session: "s9", RequestHash: "h9", OrderID: "o9"})
	require.NoError(t, err)
	assert.Equal(t, "o9", rebound.OrderID)

	assert.Equal(t, 1, store.Forget())
	got, err = store.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, got)
}
