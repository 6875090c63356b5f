// Package docstore stores the catalog in the document store's menu_items collection.
package docstore

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	"github.com/Apurer/sabor-arte/internal/shared/feed"
)

const (
	// Collection holds one document per menu item.
	Collection = "menu_items"
	// SeedMarkerPath is created once the default catalog has been written.
	SeedMarkerPath = "catalog_meta/seed"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.SeedMarker = (*SeedMarker)(nil)
)

type itemDocument struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// Repository maps menu items to documents.
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

func (r *Repository) List(ctx context.Context) ([]domain.MenuItem, error) {
	docs, err := docstore.ListOnce(ctx, r.store, Collection)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(ctx, docs), nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	if id == "" {
		return domain.MenuItem{}, ports.ErrItemNotFound
	}
	doc, err := r.store.Get(ctx, docstore.Path(Collection, id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
			return domain.MenuItem{}, ports.ErrItemNotFound
		}
		return domain.MenuItem{}, err
	}
	return decode(doc)
}

func (r *Repository) Insert(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	id, err := r.store.Insert(ctx, Collection, fields(item))
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.ID = id
	return item, nil
}

func (r *Repository) Update(ctx context.Context, item domain.MenuItem) error {
	err := r.store.Update(ctx, docstore.Path(Collection, item.ID), fields(item))
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		return ports.ErrItemNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, docstore.Path(Collection, id))
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		return ports.ErrItemNotFound
	}
	return err
}

// Watch subscribes to the collection and converts each snapshot to items.
func (r *Repository) Watch(ctx context.Context) (ports.ItemFeed, error) {
	sub, err := r.store.Subscribe(ctx, docstore.Collection(Collection))
	if err != nil {
		return nil, err
	}
	out := feed.NewLatest[[]domain.MenuItem](func() { _ = sub.Close() })
	out.CloseWhenDone(ctx)
	go func() {
		defer out.Close()
		for snap := range sub.Snapshots() {
			if !out.Publish(r.decodeAll(ctx, snap.Docs)) {
				return
			}
		}
	}()
	return itemFeed{out}, nil
}

// decodeAll skips documents that no longer decode into a valid item.
func (r *Repository) decodeAll(ctx context.Context, docs []docstore.Document) []domain.MenuItem {
	items := make([]domain.MenuItem, 0, len(docs))
	for _, doc := range docs {
		item, err := decode(doc)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping malformed menu item",
				slog.String("id", doc.ID), slog.String("error", err.Error()))
			continue
		}
		items = append(items, item)
	}
	return items
}

func decode(doc docstore.Document) (domain.MenuItem, error) {
	var d itemDocument
	if err := doc.DataTo(&d); err != nil {
		return domain.MenuItem{}, err
	}
	return domain.NewMenuItem(doc.ID, domain.Draft{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Image:       d.Image,
	})
}

func fields(item domain.MenuItem) docstore.Fields {
	return docstore.Fields{
		"name":        item.Name,
		"description": item.Description,
		"price":       item.Price.StringFixed(2),
		"category":    string(item.Category),
		"image":       item.Image,
	}
}

type itemFeed struct {
	feed *feed.Latest[[]domain.MenuItem]
}

func (f itemFeed) Updates() <-chan []domain.MenuItem { return f.feed.C() }

func (f itemFeed) Close() error { return f.feed.Close() }

// SeedMarker claims the seed marker document.
type SeedMarker struct {
	store docstore.Store
}

func NewSeedMarker(store docstore.Store) *SeedMarker {
	return &SeedMarker{store: store}
}

func (m *SeedMarker) Claim(ctx context.Context) (bool, error) {
	err := m.store.Create(ctx, SeedMarkerPath, docstore.Fields{"seededAt": docstore.ServerTimestamp})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, docstore.ErrAlreadyExists):
		return false, nil
	}
	return false, err
}

func (m *SeedMarker) Release(ctx context.Context) error {
	if err := m.store.Delete(ctx, SeedMarkerPath); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	return nil
}
