package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

var ErrUnknownItem = errors.New("menu item is not in the catalog")

// Catalog is the read side of the mirrored menu.
type Catalog interface {
	Item(id string) (catalogdomain.MenuItem, bool)
	Filtered(filter catalogdomain.Filter) []catalogdomain.MenuItem
}

// View is a point-in-time copy of a session cart.
type View struct {
	Lines     []domain.Line
	Total     decimal.Decimal
	ItemCount int
	Open      bool
}

// CheckoutFunc runs against the live cart while the session is locked.
type CheckoutFunc func(ctx context.Context, cart *domain.Cart) error

// Service manages carts and menu filters keyed by session.
type Service interface {
	View(ctx context.Context, session string) View
	AddItem(ctx context.Context, session, itemID string) (View, error)
	RemoveItem(ctx context.Context, session, itemID string) View
	ChangeQuantity(ctx context.Context, session, itemID string, delta int) View
	SetCategoryFilter(ctx context.Context, session, filter string) (catalogdomain.Filter, error)
	CategoryFilter(ctx context.Context, session string) catalogdomain.Filter
	FilteredMenu(ctx context.Context, session string) []catalogdomain.MenuItem
	Checkout(ctx context.Context, session string, fn CheckoutFunc) error
	Drop(ctx context.Context, session string)
}
