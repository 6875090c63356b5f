package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogdocstore "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/docstore"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/seed"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	docmemory "github.com/Apurer/sabor-arte/internal/platform/docstore/memory"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

func newCatalog(t *testing.T) (*application.Service, *catalogdocstore.Repository, *docmemory.Store) {
	t.Helper()
	store := docmemory.NewStore()
	repo := catalogdocstore.NewRepository(store, nil)
	return application.NewService(repo), repo, store
}

func defaults(t *testing.T) []domain.Draft {
	t.Helper()
	drafts, err := seed.Default()
	require.NoError(t, err)
	return drafts
}

func TestCreateUpdateDeleteItem(t *testing.T) {
	svc, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, domain.Draft{Name: "Pudim", Price: decimal.RequireFromString("22.5"), Category: "sobremesas"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := svc.UpdateItem(ctx, created.ID, domain.Draft{Name: "Pudim de Leite", Price: decimal.NewFromInt(24), Category: "sobremesas"})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)

	fetched, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Pudim de Leite", fetched.Name)
	require.Equal(t, "24.00", fetched.DisplayPrice())

	require.NoError(t, svc.DeleteItem(ctx, created.ID))
	_, err = svc.GetItem(ctx, created.ID)
	require.ErrorIs(t, err, application.ErrNotFound)
	require.ErrorIs(t, svc.DeleteItem(ctx, created.ID), application.ErrNotFound)
}

func TestCreateItem_ValidationError(t *testing.T) {
	svc, _, _ := newCatalog(t)
	_, err := svc.CreateItem(context.Background(), domain.Draft{Name: "", Price: decimal.NewFromInt(1), Category: "bebidas"})
	require.ErrorIs(t, err, fault.ErrValidation)
	require.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestCreateItem_StoreFailureIsPersistenceError(t *testing.T) {
	svc, _, store := newCatalog(t)
	store.FailOn("insert", errors.New("unavailable"))
	_, err := svc.CreateItem(context.Background(), domain.Draft{Name: "Café", Price: decimal.NewFromInt(8), Category: "bebidas"})
	require.ErrorIs(t, err, fault.ErrPersistence)
}

func TestResetCatalog_RequiresConfirmation(t *testing.T) {
	svc, _, _ := newCatalog(t)
	_, err := svc.ResetCatalog(context.Background(), ports.ResetCommand{Defaults: defaults(t)})
	require.ErrorIs(t, err, fault.ErrValidation)
	require.ErrorIs(t, err, application.ErrResetNotConfirmed)
}

func TestResetCatalog_ReplacesItemsWithFreshIDs(t *testing.T) {
	svc, _, _ := newCatalog(t)
	ctx := context.Background()

	old, err := svc.CreateItem(ctx, domain.Draft{Name: "Velho", Price: decimal.NewFromInt(1), Category: "entradas"})
	require.NoError(t, err)
	_, err = svc.InsertItems(ctx, defaults(t))
	require.NoError(t, err)

	report, err := svc.ResetCatalog(ctx, ports.ResetCommand{Defaults: defaults(t), Confirmed: true})
	require.NoError(t, err)
	require.Equal(t, 7, report.Deleted)
	require.Equal(t, 6, report.Inserted)
	require.True(t, report.Complete())

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
	require.Equal(t, "Tartare de Wagyu", items[0].Name)
	for _, item := range items {
		require.NotEqual(t, old.ID, item.ID)
	}
}

func TestResetCatalog_DeleteFailureSkipsInserts(t *testing.T) {
	svc, _, store := newCatalog(t)
	ctx := context.Background()
	_, err := svc.InsertItems(ctx, defaults(t))
	require.NoError(t, err)

	store.FailOn("delete", errors.New("permission denied"))
	report, err := svc.ResetCatalog(ctx, ports.ResetCommand{Defaults: defaults(t), Confirmed: true})
	require.ErrorIs(t, err, fault.ErrPersistence)
	require.Equal(t, 6, report.DeleteFailures)
	require.Zero(t, report.Inserted)
	require.Len(t, report.Errors, 6)

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
}

func TestInsertItems_StopsAtFirstFailure(t *testing.T) {
	svc, _, store := newCatalog(t)
	store.FailOn("insert", errors.New("quota exceeded"))

	report, err := svc.InsertItems(context.Background(), defaults(t))
	require.ErrorIs(t, err, fault.ErrPersistence)
	require.Zero(t, report.Inserted)
	require.Equal(t, 6, report.InsertFailures)
	require.False(t, report.Complete())
}

type countingMarker struct {
	mu     sync.Mutex
	claims int
	inner  ports.SeedMarker
}

func (m *countingMarker) Claim(ctx context.Context) (bool, error) {
	m.mu.Lock()
	m.claims++
	m.mu.Unlock()
	return m.inner.Claim(ctx)
}

func (m *countingMarker) Release(ctx context.Context) error {
	return m.inner.Release(ctx)
}

func TestSeeder_SeedsOnceAcrossConcurrentEmptySnapshots(t *testing.T) {
	svc, _, store := newCatalog(t)
	marker := &countingMarker{inner: catalogdocstore.NewSeedMarker(store)}
	seeder := application.NewSeeder(svc, marker, defaults(t), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := seeder.SeedIfEmpty(ctx)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
	require.Equal(t, 1, marker.claims)
}

func TestSeeder_MarkerBlocksSecondProcess(t *testing.T) {
	svc, _, store := newCatalog(t)
	ctx := context.Background()

	first := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	seeded, err := first.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	// staff empties the catalog by hand
	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, svc.DeleteItem(ctx, item.ID))
	}

	second := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	seeded, err = second.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.False(t, seeded)

	items, err = svc.ListItems(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestSeeder_RetriesAfterFailedRead(t *testing.T) {
	svc, _, store := newCatalog(t)
	seeder := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	ctx := context.Background()

	store.FailOn("query", errors.New("connection reset"))
	seeded, err := seeder.SeedIfEmpty(ctx)
	require.ErrorIs(t, err, fault.ErrPersistence)
	require.False(t, seeded)

	store.FailOn("query", nil)
	seeded, err = seeder.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
}

func TestSeeder_FailedInsertReleasesMarker(t *testing.T) {
	svc, _, store := newCatalog(t)
	ctx := context.Background()

	store.FailOn("insert", errors.New("quota exceeded"))
	first := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	seeded, err := first.SeedIfEmpty(ctx)
	require.ErrorIs(t, err, fault.ErrPersistence)
	require.False(t, seeded)

	_, err = store.Get(ctx, catalogdocstore.SeedMarkerPath)
	require.ErrorIs(t, err, docstore.ErrNotFound)

	store.FailOn("insert", nil)
	restarted := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	seeded, err = restarted.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
}

func TestSeeder_SameProcessRetriesAfterFailedInsert(t *testing.T) {
	svc, _, store := newCatalog(t)
	seeder := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	ctx := context.Background()

	store.FailOn("insert", errors.New("quota exceeded"))
	_, err := seeder.SeedIfEmpty(ctx)
	require.Error(t, err)

	store.FailOn("insert", nil)
	seeded, err := seeder.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
}

func TestMirror_SeedsEmptyCatalogAndFilters(t *testing.T) {
	svc, repo, store := newCatalog(t)
	seeder := application.NewSeeder(svc, catalogdocstore.NewSeedMarker(store), defaults(t), nil)
	mirror := application.NewMirror(seeder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- mirror.Run(ctx, repo) }()

	require.Eventually(t, func() bool { return len(mirror.Items()) == 6 }, 2*time.Second, 10*time.Millisecond)

	desserts, err := domain.ParseFilter("sobremesas")
	require.NoError(t, err)
	filtered := mirror.Filtered(desserts)
	require.Len(t, filtered, 1)

	item, ok := mirror.Item(filtered[0].ID)
	require.True(t, ok)
	require.Equal(t, "Mousse de Chocolate Belga", item.Name)

	cancel()
	require.NoError(t, <-done)
}

func TestMirror_LoadCatalogReplacesSnapshot(t *testing.T) {
	mirror := application.NewMirror(nil, nil)
	a := domain.MenuItem{ID: "a", Name: "A", Category: domain.CategoryStarters}
	b := domain.MenuItem{ID: "b", Name: "B", Category: domain.CategoryDrinks}

	mirror.LoadCatalog(context.Background(), []domain.MenuItem{a, b})
	select {
	case <-mirror.Ready():
	default:
		t.Fatal("mirror not ready after first load")
	}
	require.Len(t, mirror.Items(), 2)

	mirror.LoadCatalog(context.Background(), []domain.MenuItem{b})
	_, ok := mirror.Item("a")
	require.False(t, ok)
	require.Equal(t, []domain.MenuItem{b}, mirror.Items())
}
