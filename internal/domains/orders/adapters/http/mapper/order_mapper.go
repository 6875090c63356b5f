package mapper

import (
	"time"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
)

// OrderLine is one ordered item.
type OrderLine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

// Order is the transport representation of an order.
type Order struct {
	ID          string      `json:"id"`
	Customer    string      `json:"customer"`
	Table       string      `json:"table"`
	Items       []OrderLine `json:"items"`
	Total       string      `json:"total"`
	Status      string      `json:"status"`
	StatusLabel string      `json:"statusLabel"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	Customer string `json:"customer"`
	Table    string `json:"table"`
}

// StatusRequest sets a new order status.
type StatusRequest struct {
	Status string `json:"status"`
}

// FromDomainOrder converts a domain order to its transport form.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]OrderLine, 0, len(order.Items))
	for _, l := range order.Items {
		items = append(items, OrderLine{
			ID:          l.ItemID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price.StringFixed(2),
			Category:    l.Category,
			Image:       l.Image,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal().StringFixed(2),
		})
	}
	return Order{
		ID:          order.ID,
		Customer:    order.Customer,
		Table:       order.Table,
		Items:       items,
		Total:       order.Total.StringFixed(2),
		Status:      string(order.Status),
		StatusLabel: order.Status.Label(),
		CreatedAt:   order.CreatedAt.UTC(),
	}
}

// FromDomainOrders converts a slice of orders, keeping order.
func FromDomainOrders(orders []domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for i := range orders {
		result = append(result, FromDomainOrder(&orders[i]))
	}
	return result
}
