package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
	"github.com/Apurer/sabor-arte/internal/platform/docstore/memory"
)

func newOrder(customer string, total string) *domain.Order {
	price := decimal.RequireFromString(total)
	return &domain.Order{
		Customer: customer,
		Table:    "7",
		Items: []domain.Line{{
			ItemID:   "m1",
			Name:     "Moqueca",
			Price:    price,
			Category: "pratos principais",
			Image:    "https://example.com/moqueca.jpg",
			Quantity: 1,
		}},
		Total:  price,
		Status: domain.StatusPending,
	}
}

func TestRepositoryInsertAssignsIDAndTimestamp(t *testing.T) {
	store := memory.NewStore()
	fixed := time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return fixed })
	repo := NewRepository(store, nil)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, newOrder("João", "72.00"))
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, fixed, saved.CreatedAt)
	assert.Equal(t, domain.StatusPending, saved.Status)
	assert.True(t, decimal.RequireFromString("72").Equal(saved.Total))
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "Moqueca", saved.Items[0].Name)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := NewRepository(memory.NewStore(), nil)
	ctx := context.Background()

	first, err := repo.Insert(ctx, newOrder("Ana", "10.00"))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, newOrder("Bia", "20.00"))
	require.NoError(t, err)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	repo := NewRepository(memory.NewStore(), nil)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, newOrder("Ana", "10.00"))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, saved.ID, domain.StatusReady))
	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, got.Status)
	assert.Equal(t, saved.CreatedAt, got.CreatedAt)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.StatusReady), ports.ErrOrderNotFound)
	_, err = repo.Get(ctx, "")
	assert.ErrorIs(t, err, ports.ErrOrderNotFound)
}

func TestRepositoryWatchDeliversChanges(t *testing.T) {
	repo := NewRepository(memory.NewStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, err := repo.Watch(ctx)
	require.NoError(t, err)
	defer f.Close()

	select {
	case orders := <-f.Updates():
		assert.Empty(t, orders)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = repo.Insert(ctx, newOrder("Ana", "10.00"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case orders := <-f.Updates():
			return len(orders) == 1 && orders[0].Customer == "Ana"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
