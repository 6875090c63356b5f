package ports

import (
	"context"

	cartdomain "github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
)

// SubmitInput is the checkout form.
type SubmitInput struct {
	// Session owns the cart; it scopes idempotency keys.
	Session        string
	Customer       string
	Table          string
	IdempotencyKey string
}

// Service exposes the order lifecycle.
type Service interface {
	// SubmitOrder turns the cart into a pending order and clears it. On any
	// failure the cart is left untouched.
	SubmitOrder(ctx context.Context, cart *cartdomain.Cart, input SubmitInput) (*domain.Order, error)
	AdvanceStatus(ctx context.Context, id, status string) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	WatchOrders(ctx context.Context) (OrderFeed, error)
}
