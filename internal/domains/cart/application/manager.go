package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	"github.com/Apurer/sabor-arte/internal/domains/cart/ports"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

// ErrNotFound marks adds of items missing from the catalog.
var ErrNotFound = ports.ErrUnknownItem

type entry struct {
	mu       sync.Mutex
	session  *domain.Session
	lastSeen time.Time
}

// Manager keeps one session per key in memory. Operations on the same session
// are serialised; different sessions never contend beyond the map lookup.
type Manager struct {
	catalog ports.Catalog
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// Option configures the manager.
type Option func(*Manager)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(catalog ports.Catalog, opts ...Option) *Manager {
	m := &Manager{catalog: catalog, now: time.Now, sessions: map[string]*entry{}}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Manager) View(_ context.Context, session string) ports.View {
	var view ports.View
	m.with(session, func(s *domain.Session) { view = viewOf(s.Cart) })
	return view
}

// AddItem adds the catalog's current version of itemID to the cart.
func (m *Manager) AddItem(_ context.Context, session, itemID string) (ports.View, error) {
	item, ok := m.catalog.Item(itemID)
	if !ok {
		return m.View(context.Background(), session), ErrNotFound
	}
	var view ports.View
	m.with(session, func(s *domain.Session) {
		s.Cart.AddItem(item)
		view = viewOf(s.Cart)
	})
	return view, nil
}

func (m *Manager) RemoveItem(_ context.Context, session, itemID string) ports.View {
	var view ports.View
	m.with(session, func(s *domain.Session) {
		s.Cart.RemoveItem(itemID)
		view = viewOf(s.Cart)
	})
	return view
}

func (m *Manager) ChangeQuantity(_ context.Context, session, itemID string, delta int) ports.View {
	var view ports.View
	m.with(session, func(s *domain.Session) {
		s.Cart.ChangeQuantity(itemID, delta)
		view = viewOf(s.Cart)
	})
	return view
}

func (m *Manager) SetCategoryFilter(_ context.Context, session, raw string) (catalogdomain.Filter, error) {
	filter, err := catalogdomain.ParseFilter(raw)
	if err != nil {
		return catalogdomain.Filter{}, fault.Validation(err)
	}
	m.with(session, func(s *domain.Session) { s.Filter = filter })
	return filter, nil
}

func (m *Manager) CategoryFilter(_ context.Context, session string) catalogdomain.Filter {
	var filter catalogdomain.Filter
	m.with(session, func(s *domain.Session) { filter = s.Filter })
	return filter
}

func (m *Manager) FilteredMenu(ctx context.Context, session string) []catalogdomain.MenuItem {
	return m.catalog.Filtered(m.CategoryFilter(ctx, session))
}

// Checkout hands the live cart to fn while holding the session lock, so no
// other operation on the session interleaves with order submission.
func (m *Manager) Checkout(ctx context.Context, session string, fn ports.CheckoutFunc) error {
	if fn == nil {
		return errors.New("checkout func is nil")
	}
	var err error
	m.with(session, func(s *domain.Session) { err = fn(ctx, s.Cart) })
	return err
}

// Drop forgets the session, typically on sign-out.
func (m *Manager) Drop(_ context.Context, session string) {
	m.mu.Lock()
	delete(m.sessions, session)
	m.mu.Unlock()
}

// PurgeIdle drops sessions untouched for longer than idle and reports how many.
func (m *Manager) PurgeIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for key, e := range m.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, key)
			purged++
		}
		e.mu.Unlock()
	}
	return purged
}

// Len reports how many sessions are held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) with(session string, fn func(*domain.Session)) {
	e := m.acquire(session)
	defer e.mu.Unlock()
	fn(e.session)
}

// acquire returns the session's entry locked and touched. An entry purged or
// dropped while the caller waited for its lock is abandoned for the live one.
func (m *Manager) acquire(session string) *entry {
	for {
		m.mu.Lock()
		e, ok := m.sessions[session]
		if !ok {
			e = &entry{session: domain.NewSession()}
			m.sessions[session] = e
		}
		m.mu.Unlock()

		e.mu.Lock()
		m.mu.Lock()
		live := m.sessions[session] == e
		if live {
			e.lastSeen = m.now()
		}
		m.mu.Unlock()
		if live {
			return e
		}
		e.mu.Unlock()
	}
}

func viewOf(c *domain.Cart) ports.View {
	return ports.View{
		Lines:     c.Lines(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		Open:      c.Open(),
	}
}

var _ ports.Service = (*Manager)(nil)
