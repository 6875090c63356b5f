package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
)

type published struct {
	exchange string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared []string
	sent     []published
	closed   bool
	failPub  error
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return nil
}

func (c *fakeChannel) Publish(exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	if c.failPub != nil {
		return c.failPub
	}
	c.sent = append(c.sent, published{exchange: exchange, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConnection struct {
	ch *fakeChannel
}

func (f *fakeConnection) Channel() (Channel, error) { return f.ch, nil }
func (f *fakeConnection) Close() error { return nil }
func (f *fakeConnection) IsClosed() bool { return false }

func TestPublisherSendsOrderPlaced(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(&fakeConnection{ch: ch})
	at := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), domain.OrderPlaced{
		BaseEvent: domain.BaseEvent{Timestamp: at},
		OrderID:   "o1",
		Customer:  "João",
		Table:     "12",
		Total:     decimal.RequireFromString("136"),
		ItemCount: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{Exchange + ":fanout"}, ch.declared)
	assert.True(t, ch.closed)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, Exchange, ch.sent[0].exchange)
	assert.Equal(t, "orders.order.placed", ch.sent[0].msg.Type)

	var body Message
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &body))
	assert.Equal(t, "o1", body.OrderID)
	assert.Equal(t, "136.00", body.Total)
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, at, body.OccurredAt)
}

func TestPublisherSendsStatusChange(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(&fakeConnection{ch: ch})

	err := pub.Publish(context.Background(), domain.OrderStatusChanged{
		OrderID:        "o1",
		Status:         domain.StatusReady,
		PreviousStatus: domain.StatusPending,
	})
	require.NoError(t, err)

	var body Message
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "pending", body.PreviousStatus)
}

func TestPublisherReportsBrokerFailure(t *testing.T) {
	ch := &fakeChannel{failPub: errors.New("channel closed")}
	pub := NewPublisher(&fakeConnection{ch: ch})

	err := pub.Publish(context.Background(), domain.OrderStatusChanged{OrderID: "o1", Status: domain.StatusReady})
	assert.ErrorContains(t, err, "channel closed")
	assert.True(t, ch.closed)
}
