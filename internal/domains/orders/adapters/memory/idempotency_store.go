// Package memory keeps checkout idempotency keys inside the API process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
)

// DefaultRetention bounds how long a checkout key can be replayed.
const DefaultRetention = 24 * time.Hour

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore remembers which order each checkout key produced.
type IdempotencyStore struct {
	retention time.Duration
	now       func() time.Time

	mu     sync.Mutex
	checks map[string]ports.IdempotencyRecord
}

// Option configures the store.
type Option func(*IdempotencyStore)

// WithRetention changes how long keys are kept. Zero or negative keeps them forever.
func WithRetention(d time.Duration) Option {
	return func(s *IdempotencyStore) { s.retention = d }
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *IdempotencyStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewIdempotencyStore(opts ...Option) *IdempotencyStore {
	s := &IdempotencyStore{
		retention: DefaultRetention,
		now:       time.Now,
		checks:    map[string]ports.IdempotencyRecord{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Save binds key to the order in record. Saving the same binding twice is a
// no-op; binding a live key to another session, cart or order is a conflict
// and the original binding is returned alongside the error.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.live(record.Key); ok {
		if prior.Session != record.Session || prior.RequestHash != record.RequestHash || prior.OrderID != record.OrderID {
			return &prior, ports.ErrIdempotencyConflict
		}
		return &prior, nil
	}

	at := s.now()
	record.CreatedAt, record.UpdatedAt = at, at
	s.checks[record.Key] = record
	return &record, nil
}

// Forget drops keys older than the retention window and reports how many went.
func (s *IdempotencyStore) Forget() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, rec := range s.checks {
		if s.expired(rec) {
			delete(s.checks, key)
			n++
		}
	}
	return n
}

// live must be called with s.mu held.
func (s *IdempotencyStore) live(key string) (ports.IdempotencyRecord, bool) {
	rec, ok := s.checks[key]
	if !ok {
		return ports.IdempotencyRecord{}, false
	}
	if s.expired(rec) {
		delete(s.checks, key)
		return ports.IdempotencyRecord{}, false
	}
	return rec, true
}

func (s *IdempotencyStore) expired(rec ports.IdempotencyRecord) bool {
	return s.retention > 0 && s.now().Sub(rec.CreatedAt) >= s.retention
}
