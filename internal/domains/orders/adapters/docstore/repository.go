// Package docstore stores orders in the document store's orders collection.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	"github.com/Apurer/sabor-arte/internal/shared/feed"
)

// Collection holds one document per order.
const Collection = "orders"

var _ ports.Repository = (*Repository)(nil)

// newestFirst is the staff dashboard ordering.
var newestFirst = docstore.Collection(Collection).OrderedBy("createdAt", docstore.Descending)

type orderDocument struct {
	Customer  string          `json:"customer"`
	Table     string          `json:"table"`
	Items     []lineDocument  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
}

type lineDocument struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
}

// Repository maps orders to documents.
type Repository struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewRepository(store docstore.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{store: store, logger: logger}
}

// Insert writes the order with a server-assigned createdAt and reads it back
// so the caller sees the stored timestamp.
func (r *Repository) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	id, err := r.store.Insert(ctx, Collection, fields(order))
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ports.ErrOrderNotFound
	}
	doc, err := r.store.Get(ctx, docstore.Path(Collection, id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
			return nil, ports.ErrOrderNotFound
		}
		return nil, err
	}
	return decode(doc)
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	err := r.store.Update(ctx, docstore.Path(Collection, id), docstore.Fields{"status": string(status)})
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		return ports.ErrOrderNotFound
	}
	return err
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.store.Query(ctx, newestFirst)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(ctx, docs), nil
}

// Watch subscribes to the collection ordered newest first.
func (r *Repository) Watch(ctx context.Context) (ports.OrderFeed, error) {
	sub, err := r.store.Subscribe(ctx, newestFirst)
	if err != nil {
		return nil, err
	}
	out := feed.NewLatest[[]domain.Order](func() { _ = sub.Close() })
	out.CloseWhenDone(ctx)
	go func() {
		defer out.Close()
		for snap := range sub.Snapshots() {
			if !out.Publish(r.decodeAll(ctx, snap.Docs)) {
				return
			}
		}
	}()
	return orderFeed{out}, nil
}

func (r *Repository) decodeAll(ctx context.Context, docs []docstore.Document) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := decode(doc)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping malformed order",
				slog.String("id", doc.ID), slog.String("error", err.Error()))
			continue
		}
		orders = append(orders, *order)
	}
	return orders
}

func decode(doc docstore.Document) (*domain.Order, error) {
	var d orderDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", doc.ID, err)
	}
	createdAt := doc.CreateTime
	if d.CreatedAt != "" {
		if createdAt, err = time.Parse(docstore.TimestampLayout, d.CreatedAt); err != nil {
			return nil, fmt.Errorf("order %s: createdAt: %w", doc.ID, err)
		}
	}
	order := &domain.Order{
		ID:        doc.ID,
		Customer:  d.Customer,
		Table:     d.Table,
		Items:     make([]domain.Line, 0, len(d.Items)),
		Total:     d.Total,
		Status:    status,
		CreatedAt: createdAt,
	}
	for _, l := range d.Items {
		order.Items = append(order.Items, domain.Line{
			ItemID:      l.ID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			Category:    l.Category,
			Image:       l.Image,
			Quantity:    l.Quantity,
		})
	}
	return order, nil
}

func fields(order *domain.Order) docstore.Fields {
	items := make([]map[string]any, 0, len(order.Items))
	for _, l := range order.Items {
		items = append(items, map[string]any{
			"id":          l.ItemID,
			"name":        l.Name,
			"description": l.Description,
			"price":       l.Price.StringFixed(2),
			"category":    l.Category,
			"image":       l.Image,
			"quantity":    l.Quantity,
		})
	}
	return docstore.Fields{
		"customer":  order.Customer,
		"table":     order.Table,
		"items":     items,
		"total":     order.Total.StringFixed(2),
		"status":    string(order.Status),
		"createdAt": docstore.ServerTimestamp,
	}
}

type orderFeed struct {
	feed *feed.Latest[[]domain.Order]
}

func (f orderFeed) Updates() <-chan []domain.Order { return f.feed.C() }

func (f orderFeed) Close() error { return f.feed.Close() }
