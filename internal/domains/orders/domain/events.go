package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for order events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised when a cart has been turned into a pending order.
type OrderPlaced struct {
	BaseEvent
	OrderID   string
	Customer  string
	Table     string
	Total     decimal.Decimal
	ItemCount int
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// OrderStatusChanged is raised after staff writes a new status.
type OrderStatusChanged struct {
	BaseEvent
	OrderID        string
	Status         Status
	PreviousStatus Status
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.order.status_changed"
}
