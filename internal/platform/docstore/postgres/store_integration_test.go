//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	docpostgres "github.com/Apurer/sabor-arte/internal/platform/docstore/postgres"
	"github.com/Apurer/sabor-arte/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, string, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("sabor_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, dsn, cleanup
}

type dish struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	CreatedAt string  `json:"createdAt"`
}

func TestStore_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := docpostgres.NewStore(db)

	id, err := store.Insert(ctx, "menu", docstore.Fields{"name": "Tartare", "price": 68, "createdAt": docstore.ServerTimestamp})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, docstore.Path("menu", id), docstore.Fields{"price": 70.5}))

	doc, err := store.Get(ctx, docstore.Path("menu", id))
	require.NoError(t, err)
	var d dish
	require.NoError(t, doc.DataTo(&d))
	require.Equal(t, "Tartare", d.Name)
	require.Equal(t, 70.5, d.Price)
	_, err = time.Parse(docstore.TimestampLayout, d.CreatedAt)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, docstore.Path("menu", id)))
	_, err = store.Get(ctx, docstore.Path("menu", id))
	require.ErrorIs(t, err, docstore.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, docstore.Path("menu", id)), docstore.ErrNotFound)
}

func TestStore_CreateIsExclusive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := docpostgres.NewStore(db)
	require.NoError(t, store.Create(ctx, "meta/seed", docstore.Fields{"at": docstore.ServerTimestamp}))
	require.ErrorIs(t, store.Create(ctx, "meta/seed", docstore.Fields{}), docstore.ErrAlreadyExists)
}

func TestStore_QueryOrdersByTimestampDescending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := docpostgres.NewStore(db)
	for _, name := range []string{"first", "second", "third"} {
		_, err := store.Insert(ctx, "orders", docstore.Fields{"name": name, "createdAt": docstore.ServerTimestamp})
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, docstore.Collection("orders").OrderedBy("createdAt", docstore.Descending))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	var newest dish
	require.NoError(t, docs[0].DataTo(&newest))
	require.Equal(t, "third", newest.Name)
}

func TestStore_SubscribeAcrossInstances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, dsn, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := docpostgres.NewStore(db)
	writer := docpostgres.NewStore(db)
	go func() { _ = reader.Listen(ctx, dsn) }()

	sub, err := reader.Subscribe(ctx, docstore.Collection("orders"))
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool {
		select {
		case snap := <-sub.Snapshots():
			return len(snap.Docs) == 0
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)

	// the listener starts asynchronously; keep writing until one is relayed
	require.Eventually(t, func() bool {
		_, err := writer.Insert(ctx, "orders", docstore.Fields{"name": "remote"})
		require.NoError(t, err)
		require.NoError(t, db.Exec("SELECT pg_notify(?, ?)", docpostgres.NotifyChannel, "orders").Error)
		select {
		case snap := <-sub.Snapshots():
			return len(snap.Docs) > 0
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 50*time.Millisecond)
}
