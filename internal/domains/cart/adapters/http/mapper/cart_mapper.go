package mapper

import (
	cartports "github.com/Apurer/sabor-arte/internal/domains/cart/ports"
	catalogmapper "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/http/mapper"
)

// CartLine is one line of the transport cart.
type CartLine struct {
	Item     catalogmapper.MenuItem `json:"item"`
	Quantity int                    `json:"quantity"`
	Subtotal string                 `json:"subtotal"`
}

// Cart is the transport representation of a session cart.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	Total     string     `json:"total"`
	ItemCount int        `json:"itemCount"`
	Open      bool       `json:"open"`
}

// AddItemRequest adds one unit of a menu item.
type AddItemRequest struct {
	ItemID string `json:"itemId"`
}

// ChangeQuantityRequest adjusts a line by Delta, never below one.
type ChangeQuantityRequest struct {
	Delta int `json:"delta"`
}

// CategoryFilter carries the session's menu filter.
type CategoryFilter struct {
	Category string `json:"category"`
}

// FromView converts a cart view to its transport form.
func FromView(view cartports.View) Cart {
	lines := make([]CartLine, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, CartLine{
			Item:     catalogmapper.FromDomainMenuItem(l.Item),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal().StringFixed(2),
		})
	}
	return Cart{
		Lines:     lines,
		Total:     view.Total.StringFixed(2),
		ItemCount: view.ItemCount,
		Open:      view.Open,
	}
}
