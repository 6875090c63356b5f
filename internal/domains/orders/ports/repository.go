package ports

import (
	"context"
	"errors"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository persists orders. The store assigns ids and creation timestamps.
type Repository interface {
	// Insert stores the order and returns it with id and createdAt filled in.
	Insert(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	// List returns every order, newest first.
	List(ctx context.Context) ([]domain.Order, error)
	Watch(ctx context.Context) (OrderFeed, error)
}

// OrderFeed streams the full order list, newest first, after every change.
// Intermediate states may be skipped.
type OrderFeed interface {
	Updates() <-chan []domain.Order
	Close() error
}
