package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
)

// Exchange receives every order event.
const Exchange = "orders_fanout"

var _ ports.EventPublisher = (*Publisher)(nil)

// Message is the JSON body of an order event.
type Message struct {
	Event          string    `json:"event"`
	OrderID        string    `json:"orderId"`
	Customer       string    `json:"customer,omitempty"`
	Table          string    `json:"table,omitempty"`
	Total          string    `json:"total,omitempty"`
	ItemCount      int       `json:"itemCount,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher declares the fanout exchange lazily and publishes one message per
// event on a short-lived channel.
type Publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(Exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = ch.Publish(Exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         event.EventName(),
		Timestamp:    event.OccurredAt(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// NewMessage flattens a domain event into its wire form.
func NewMessage(event domain.Event) (Message, error) {
	msg := Message{Event: event.EventName(), OccurredAt: event.OccurredAt().UTC()}
	switch e := event.(type) {
	case domain.OrderPlaced:
		msg.OrderID = e.OrderID
		msg.Customer = e.Customer
		msg.Table = e.Table
		msg.Total = e.Total.StringFixed(2)
		msg.ItemCount = e.ItemCount
		msg.Status = string(domain.StatusPending)
	case domain.OrderStatusChanged:
		msg.OrderID = e.OrderID
		msg.Status = string(e.Status)
		msg.PreviousStatus = string(e.PreviousStatus)
	default:
		return Message{}, fmt.Errorf("unsupported order event %q", event.EventName())
	}
	return msg, nil
}
