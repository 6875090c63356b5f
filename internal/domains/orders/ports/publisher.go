package ports

import (
	"context"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
)

// EventPublisher fans order events out to interested consumers (kitchen
// displays, notifications).
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
