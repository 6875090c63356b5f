// Package memory provides an in-process document store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	"github.com/Apurer/sabor-arte/internal/shared/feed"
)

var _ docstore.Store = (*Store)(nil)

type entry struct {
	seq uint64
	doc docstore.Document
}

type watcher struct {
	query docstore.Query
	feed  *feed.Latest[docstore.Snapshot]
}

// Store keeps documents in maps guarded by a single lock. Subscribers are
// notified while the lock is held so snapshots are delivered in write order.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]entry
	seq         uint64
	watchers    map[uint64]*watcher
	nextWatcher uint64
	clock       docstore.Clock
	now         func() time.Time
	newID       func() string
	failures    map[string]error
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		collections: map[string]map[string]entry{},
		watchers:    map[uint64]*watcher{},
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
		failures:    map[string]error{},
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// FailOn makes every operation named op ("insert", "create", "update",
// "delete", "get", "query") return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get returns a single document.
func (s *Store) Get(ctx context.Context, path string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return docstore.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("get"); err != nil {
		return docstore.Document{}, err
	}
	e, ok := s.collections[collection][id]
	if !ok {
		return docstore.Document{}, fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	return cloneDoc(e.doc), nil
}

// Query returns every document of the collection in query order.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("query"); err != nil {
		return nil, err
	}
	return s.queryLocked(q), nil
}

// Subscribe delivers the current result immediately and again after every
// write to the collection. The subscription ends when ctx is done or Close is
// called.
func (s *Store) Subscribe(ctx context.Context, q docstore.Query) (docstore.Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	w := &watcher{query: q}
	w.feed = feed.NewLatest[docstore.Snapshot](func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	})
	s.watchers[id] = w
	w.feed.Publish(docstore.Snapshot{Docs: s.queryLocked(q), ReadTime: s.now().UTC()})
	s.mu.Unlock()

	w.feed.CloseWhenDone(ctx)
	return subscription{w.feed}, nil
}

// Insert stores a new document under a generated id.
func (s *Store) Insert(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := s.newID()
	if _, _, err := docstore.SplitPath(docstore.Path(collection, id)); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("insert"); err != nil {
		return "", err
	}
	if err := s.putLocked(collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Create stores a document under a fixed path unless it already exists.
func (s *Store) Create(ctx context.Context, path string, fields docstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("create"); err != nil {
		return err
	}
	if _, ok := s.collections[collection][id]; ok {
		return fmt.Errorf("%w: %s", docstore.ErrAlreadyExists, path)
	}
	return s.putLocked(collection, id, fields)
}

// Update merges fields into an existing document.
func (s *Store) Update(ctx context.Context, path string, fields docstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("update"); err != nil {
		return err
	}
	e, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	now := s.clock.Next(s.now())
	data, err := docstore.Merge(e.doc.Data, docstore.Resolve(fields, now))
	if err != nil {
		return err
	}
	e.doc.Data = data
	e.doc.UpdateTime = now
	s.collections[collection][id] = e
	s.notifyLocked(collection)
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("delete"); err != nil {
		return err
	}
	if _, ok := s.collections[collection][id]; !ok {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	delete(s.collections[collection], id)
	s.notifyLocked(collection)
	return nil
}

func (s *Store) putLocked(collection, id string, fields docstore.Fields) error {
	now := s.clock.Next(s.now())
	data, err := docstore.Encode(docstore.Resolve(fields, now))
	if err != nil {
		return err
	}
	docs, ok := s.collections[collection]
	if !ok {
		docs = map[string]entry{}
		s.collections[collection] = docs
	}
	s.seq++
	docs[id] = entry{
		seq: s.seq,
		doc: docstore.Document{ID: id, Collection: collection, Data: data, CreateTime: now, UpdateTime: now},
	}
	s.notifyLocked(collection)
	return nil
}

func (s *Store) queryLocked(q docstore.Query) []docstore.Document {
	entries := make([]entry, 0, len(s.collections[q.Collection]))
	for _, e := range s.collections[q.Collection] {
		entries = append(entries, e)
	}
	// insertion order first so unordered queries and sort ties are stable
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	docs := make([]docstore.Document, len(entries))
	for i, e := range entries {
		docs[i] = cloneDoc(e.doc)
	}
	docstore.Sort(docs, q.Orders)
	return docs
}

func (s *Store) notifyLocked(collection string) {
	readTime := s.now().UTC()
	for _, w := range s.watchers {
		if w.query.Collection != collection {
			continue
		}
		w.feed.Publish(docstore.Snapshot{Docs: s.queryLocked(w.query), ReadTime: readTime})
	}
}

func cloneDoc(d docstore.Document) docstore.Document {
	d.Data = append(json.RawMessage(nil), d.Data...)
	return d
}

type subscription struct {
	feed *feed.Latest[docstore.Snapshot]
}

func (s subscription) Snapshots() <-chan docstore.Snapshot { return s.feed.C() }

func (s subscription) Close() error { return s.feed.Close() }
