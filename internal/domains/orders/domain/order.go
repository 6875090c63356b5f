package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/Apurer/sabor-arte/internal/domains/cart/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingCustomer   = errors.New("customer name is required")
	ErrMissingTable      = errors.New("table is required")
	ErrInvalidQuantity   = errors.New("line quantity must be at least one")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrUnknownPolicy     = errors.New("unknown order status policy")
)

// Line is the copy of a cart line frozen into an order.
type Line struct {
	ItemID      string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       string
	Quantity    int
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a submitted cart. Total is fixed at creation.
type Order struct {
	ID        string
	Customer  string
	Table     string
	Items     []Line
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

// NewOrder validates the checkout form and copies the cart lines into a
// pending order. The cart itself is not touched.
func NewOrder(customer, table string, lines []cartdomain.Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, ErrMissingCustomer
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, ErrMissingTable
	}
	order := &Order{
		Customer: customer,
		Table:    table,
		Items:    make([]Line, 0, len(lines)),
		Total:    decimal.Zero,
		Status:   StatusPending,
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		line := Line{
			ItemID:      l.Item.ID,
			Name:        l.Item.Name,
			Description: l.Item.Description,
			Price:       l.Item.Price,
			Category:    string(l.Item.Category),
			Image:       l.Item.Image,
			Quantity:    l.Quantity,
		}
		order.Items = append(order.Items, line)
		order.Total = order.Total.Add(line.Subtotal())
	}
	return order, nil
}

// ItemCount sums the line quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]Line(nil), o.Items...)
	return &c
}
