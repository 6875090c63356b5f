package api

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	cartapp "github.com/Apurer/sabor-arte/internal/domains/cart/application"
	catalogapp "github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	identitymemory "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/memory"
	identityapp "github.com/Apurer/sabor-arte/internal/domains/identity/application"
)

func newCartManager(t *testing.T) *cartapp.Manager {
	t.Helper()
	mirror := catalogapp.NewMirror(nil, nil)
	mirror.LoadCatalog(context.Background(), []catalogdomain.MenuItem{{
		ID:       "tartare",
		Name:     "Tartare de Wagyu",
		Price:    decimal.RequireFromString("68.00"),
		Category: catalogdomain.CategoryStarters,
	}})
	return cartapp.NewManager(mirror)
}

func TestDropCartsOnSignOut_OnlyDropsThatSession(t *testing.T) {
	ctx := context.Background()
	carts := newCartManager(t)
	identity := identityapp.NewService(identitymemory.NewAccountRepository(), identitymemory.NewSessionStore())
	unsubscribe := identity.Subscribe(dropCartsOnSignOut(ctx, carts))
	defer unsubscribe()

	kitchen, err := identity.RegisterCredentials(ctx, "chef@saborearte.com.br", "segredo123")
	require.NoError(t, err)
	counter, err := identity.SignInWithCredentials(ctx, "chef@saborearte.com.br", "segredo123")
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, kitchen.Token, "tartare")
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, counter.Token, "tartare")
	require.NoError(t, err)

	require.NoError(t, identity.SignOut(ctx, kitchen.Token))

	require.Zero(t, carts.View(ctx, kitchen.Token).ItemCount)
	require.Equal(t, 1, carts.View(ctx, counter.Token).ItemCount)
}

func TestDropCartsOnSignOut_ExpiredTokenKeepsNewerSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	carts := newCartManager(t)
	identity := identityapp.NewService(identitymemory.NewAccountRepository(), identitymemory.NewSessionStore(),
		identityapp.WithSessionTTL(time.Hour),
		identityapp.WithClock(func() time.Time { return now }),
	)
	unsubscribe := identity.Subscribe(dropCartsOnSignOut(ctx, carts))
	defer unsubscribe()

	old, err := identity.RegisterCredentials(ctx, "chef@saborearte.com.br", "segredo123")
	require.NoError(t, err)
	now = now.Add(50 * time.Minute)
	fresh, err := identity.SignInWithCredentials(ctx, "chef@saborearte.com.br", "segredo123")
	require.NoError(t, err)

	_, err = carts.AddItem(ctx, old.Token, "tartare")
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, fresh.Token, "tartare")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = identity.Resolve(ctx, old.Token)
	require.Error(t, err)

	require.Zero(t, carts.View(ctx, old.Token).ItemCount)
	require.Equal(t, 1, carts.View(ctx, fresh.Token).ItemCount)
}
