package application

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
)

// Mirror keeps an in-memory copy of the catalog fed by repository snapshots.
type Mirror struct {
	seeder *Seeder
	logger *slog.Logger

	mu    sync.RWMutex
	items []domain.MenuItem
	byID  map[string]int
	ready chan struct{}
	once  sync.Once
}

func NewMirror(seeder *Seeder, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Mirror{seeder: seeder, logger: logger, byID: map[string]int{}, ready: make(chan struct{})}
}

// LoadCatalog replaces the mirrored catalog. An empty snapshot asks the seeder
// to write the default menu; the resulting writes arrive as later snapshots.
func (m *Mirror) LoadCatalog(ctx context.Context, items []domain.MenuItem) {
	copied := append([]domain.MenuItem(nil), items...)
	byID := make(map[string]int, len(copied))
	for i, item := range copied {
		byID[item.ID] = i
	}
	m.mu.Lock()
	m.items = copied
	m.byID = byID
	m.mu.Unlock()
	m.once.Do(func() { close(m.ready) })

	if len(copied) == 0 && m.seeder != nil {
		if _, err := m.seeder.SeedIfEmpty(ctx); err != nil {
			m.logger.ErrorContext(ctx, "catalog seeding failed", slog.String("error", err.Error()))
		}
	}
}

// Run mirrors the repository until ctx is done or the feed closes.
func (m *Mirror) Run(ctx context.Context, repo ports.Repository) error {
	feed, err := repo.Watch(ctx)
	if err != nil {
		return mapError(err)
	}
	defer feed.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case items, ok := <-feed.Updates():
			if !ok {
				return nil
			}
			m.LoadCatalog(ctx, items)
		}
	}
}

// Ready is closed once the first snapshot has been loaded.
func (m *Mirror) Ready() <-chan struct{} {
	return m.ready
}

// Items returns the catalog in insertion order.
func (m *Mirror) Items() []domain.MenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.MenuItem(nil), m.items...)
}

// Item looks up a mirrored item by id.
func (m *Mirror) Item(id string) (domain.MenuItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return domain.MenuItem{}, false
	}
	return m.items[i], true
}

// Filtered returns the subsequence of the catalog matching filter.
func (m *Mirror) Filtered(filter domain.Filter) []domain.MenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filter.Apply(m.items)
}
