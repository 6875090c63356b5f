package ports

import (
	"context"
	"errors"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

var ErrItemNotFound = errors.New("menu item not found")

// Repository persists menu items. Listing returns insertion order.
type Repository interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	// Insert stores the item under a fresh id and returns it with that id.
	Insert(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Update(ctx context.Context, item domain.MenuItem) error
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context) (ItemFeed, error)
}

// ItemFeed streams the full catalog after every change. Intermediate states may
// be skipped.
type ItemFeed interface {
	Updates() <-chan []domain.MenuItem
	Close() error
}

// SeedMarker records that the default catalog has been written once.
type SeedMarker interface {
	// Claim returns true for exactly one caller across every process sharing the store.
	Claim(ctx context.Context) (bool, error)
	// Release undoes a claim whose seed wrote nothing, so a later attempt can seed.
	Release(ctx context.Context) error
}
