package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	catalogapp "github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

func testCatalog() *catalogapp.Mirror {
	mirror := catalogapp.NewMirror(nil, nil)
	mirror.LoadCatalog(context.Background(), []catalogdomain.MenuItem{
		{ID: "tartare", Name: "Tartare de Wagyu", Price: decimal.RequireFromString("68.00"), Category: catalogdomain.CategoryStarters},
		{ID: "vieiras", Name: "Vieiras Seladas", Price: decimal.RequireFromString("85.00"), Category: catalogdomain.CategoryStarters},
		{ID: "mousse", Name: "Mousse de Chocolate Belga", Price: decimal.RequireFromString("38.00"), Category: catalogdomain.CategoryDesserts},
	})
	return mirror
}

func TestAddItem_UsesCatalogAndIsolatesSessions(t *testing.T) {
	m := NewManager(testCatalog())
	ctx := context.Background()

	view, err := m.AddItem(ctx, "alice", "tartare")
	require.NoError(t, err)
	view, err = m.AddItem(ctx, "alice", "tartare")
	require.NoError(t, err)
	require.Equal(t, 2, view.ItemCount)
	require.True(t, view.Total.Equal(decimal.RequireFromString("136")))
	require.True(t, view.Open)

	other := m.View(ctx, "bob")
	require.Zero(t, other.ItemCount)
}

func TestAddItem_UnknownItem(t *testing.T) {
	m := NewManager(testCatalog())
	_, err := m.AddItem(context.Background(), "alice", "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChangeQuantityAndRemove(t *testing.T) {
	m := NewManager(testCatalog())
	ctx := context.Background()
	_, err := m.AddItem(ctx, "alice", "mousse")
	require.NoError(t, err)

	view := m.ChangeQuantity(ctx, "alice", "mousse", 4)
	require.Equal(t, 5, view.ItemCount)
	view = m.ChangeQuantity(ctx, "alice", "mousse", -50)
	require.Equal(t, 1, view.ItemCount)
	view = m.RemoveItem(ctx, "alice", "mousse")
	require.Zero(t, view.ItemCount)
	require.Empty(t, view.Lines)
}

func TestCategoryFilter(t *testing.T) {
	m := NewManager(testCatalog())
	ctx := context.Background()

	require.True(t, m.CategoryFilter(ctx, "alice").All())
	require.Len(t, m.FilteredMenu(ctx, "alice"), 3)

	_, err := m.SetCategoryFilter(ctx, "alice", "sobremesas")
	require.NoError(t, err)
	menu := m.FilteredMenu(ctx, "alice")
	require.Len(t, menu, 1)
	require.Equal(t, "mousse", menu[0].ID)

	_, err = m.SetCategoryFilter(ctx, "alice", "lanches")
	require.ErrorIs(t, err, fault.ErrValidation)
	require.Equal(t, "sobremesas", m.CategoryFilter(ctx, "alice").String())

	_, err = m.SetCategoryFilter(ctx, "alice", "todas")
	require.NoError(t, err)
	require.Len(t, m.FilteredMenu(ctx, "alice"), 3)
}

func TestCheckout_RunsUnderSessionLock(t *testing.T) {
	m := NewManager(testCatalog())
	ctx := context.Background()
	_, err := m.AddItem(ctx, "alice", "tartare")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Checkout(ctx, "alice", func(_ context.Context, c *domain.Cart) error {
			close(entered)
			<-release
			c.Clear()
			return nil
		})
	}()
	<-entered

	added := make(chan struct{})
	go func() {
		_, _ = m.AddItem(ctx, "alice", "vieiras")
		close(added)
	}()
	select {
	case <-added:
		t.Fatal("add interleaved with checkout")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-done
	<-added

	view := m.View(ctx, "alice")
	require.Equal(t, 1, view.ItemCount)
	require.Equal(t, "vieiras", view.Lines[0].Item.ID)
}

func TestCheckout_ErrorKeepsCart(t *testing.T) {
	m := NewManager(testCatalog())
	ctx := context.Background()
	_, err := m.AddItem(ctx, "alice", "tartare")
	require.NoError(t, err)

	boom := errors.New("store unreachable")
	err = m.Checkout(ctx, "alice", func(context.Context, *domain.Cart) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, m.View(ctx, "alice").ItemCount)
}

func TestDropAndPurgeIdle(t *testing.T) {
	now := time.Date(2024, 2, 2, 19, 0, 0, 0, time.UTC)
	m := NewManager(testCatalog(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := m.AddItem(ctx, "alice", "tartare")
	require.NoError(t, err)
	_, err = m.AddItem(ctx, "bob", "tartare")
	require.NoError(t, err)

	m.Drop(ctx, "alice")
	require.Zero(t, m.View(ctx, "alice").ItemCount)

	now = now.Add(3 * time.Hour)
	m.View(ctx, "alice")
	require.Equal(t, 1, m.PurgeIdle(time.Hour))
	require.Equal(t, 1, m.Len())
}

func TestConcurrentAdds(t *testing.T) {
	m := NewManager(testCatalog())
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AddItem(ctx, "alice", "tartare")
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	view := m.View(ctx, "alice")
	require.Len(t, view.Lines, 1)
	require.Equal(t, 50, view.Lines[0].Quantity)
}

func TestAddItem_SurvivesConcurrentPurge(t *testing.T) {
	var clock atomic.Int64
	clock.Store(time.Date(2024, 2, 2, 19, 0, 0, 0, time.UTC).UnixNano())
	m := NewManager(testCatalog(), WithClock(func() time.Time { return time.Unix(0, clock.Load()).UTC() }))
	ctx := context.Background()

	for i := 0; i < 300; i++ {
		_, err := m.AddItem(ctx, "alice", "tartare")
		require.NoError(t, err)
		clock.Add(int64(2 * time.Hour))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.AddItem(ctx, "alice", "mousse")
			require.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			m.PurgeIdle(time.Hour)
		}()
		wg.Wait()

		view := m.View(ctx, "alice")
		require.NotZero(t, view.ItemCount, "add %d landed on a purged cart", i)
		m.Drop(ctx, "alice")
	}
}
