// Package postgres stores documents as jsonb rows and fans out changes with
// LISTEN/NOTIFY so subscribers on every API instance see each write.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	"github.com/Apurer/sabor-arte/internal/shared/feed"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying changed collection names.
const NotifyChannel = "docstore_changes"

var _ docstore.Store = (*Store)(nil)

type watcher struct {
	query docstore.Query
	feed  *feed.Latest[docstore.Snapshot]
}

// Store persists documents in the documents table.
type Store struct {
	db        *gorm.DB
	logger    *slog.Logger
	clock     docstore.Clock
	listening atomic.Bool

	mu          sync.Mutex
	watchers    map[uint64]*watcher
	nextWatcher uint64
	// serialises snapshot refreshes so newer reads are published last
	refreshMu sync.Mutex
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the logger used for background refresh failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore wires a PostgreSQL-backed document store.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		watchers: map[uint64]*watcher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads a single document.
func (s *Store) Get(ctx context.Context, path string) (docstore.Document, error) {
	if err := s.ensureDB(); err != nil {
		return docstore.Document{}, err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return docstore.Document{}, err
	}
	var record documentRecord
	err = s.db.WithContext(ctx).First(&record, "collection = ? AND id = ?", collection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return docstore.Document{}, fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
		}
		return docstore.Document{}, err
	}
	return toDocument(record), nil
}

// Query loads a collection in insertion order and applies the query ordering.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var records []documentRecord
	if err := s.db.WithContext(ctx).
		Where("collection = ?", q.Collection).
		Order("seq").
		Find(&records).Error; err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, len(records))
	for i, r := range records {
		docs[i] = toDocument(r)
	}
	docstore.Sort(docs, q.Orders)
	return docs, nil
}

// Subscribe publishes the current result and re-runs the query whenever the
// collection changes.
func (s *Store) Subscribe(ctx context.Context, q docstore.Query) (docstore.Subscription, error) {
	docs, err := s.Query(ctx, q)
	if err != nil {
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
	s.mu.Unlock()

	w.feed.Publish(docstore.Snapshot{Docs: docs, ReadTime: time.Now().UTC()})
	// a write may have landed between the initial read and registration
	s.refreshWatcher(context.WithoutCancel(ctx), w)
	w.feed.CloseWhenDone(ctx)
	return subscription{w.feed}, nil
}

// Insert stores fields under a generated id.
func (s *Store) Insert(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := uuid.NewString()
	if err := s.create(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Create stores fields at path unless a document already lives there.
func (s *Store) Create(ctx context.Context, path string, fields docstore.Fields) error {
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	return s.create(ctx, collection, id, fields)
}

func (s *Store) create(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if _, _, err := docstore.SplitPath(docstore.Path(collection, id)); err != nil {
		return err
	}
	now, err := s.serverTime(ctx)
	if err != nil {
		return err
	}
	data, err := docstore.Encode(docstore.Resolve(fields, now))
	if err != nil {
		return err
	}
	record := documentRecord{
		Collection: collection,
		ID:         id,
		Data:       string(data),
		CreateTime: now,
		UpdateTime: now,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoNothing: true,
		}).
		Create(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", docstore.ErrAlreadyExists, docstore.Path(collection, id))
	}
	s.changed(ctx, collection)
	return nil
}

// Update merges fields into the stored jsonb object.
func (s *Store) Update(ctx context.Context, path string, fields docstore.Fields) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	now, err := s.serverTime(ctx)
	if err != nil {
		return err
	}
	patch, err := docstore.Encode(docstore.Resolve(fields, now))
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&documentRecord{}).
		Where("collection = ? AND id = ?", collection, id).
		Updates(map[string]any{
			"data":        gorm.Expr("data || ?::jsonb", string(patch)),
			"update_time": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	s.changed(ctx, collection)
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	s.changed(ctx, collection)
	return nil
}

// Listen relays NOTIFY messages to local subscribers until ctx is done. While
// it runs, writes are fanned out through the database instead of locally.
func (s *Store) Listen(ctx context.Context, dsn string) error {
	listener := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn("docstore listener event", slog.Int("event", int(ev)), slog.String("error", err.Error()))
		}
	})
	defer listener.Close()
	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	s.listening.Store(true)
	defer s.listening.Store(false)
	s.logger.Info("docstore listener started", slog.String("channel", NotifyChannel))

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// reconnected: notifications may have been missed
				s.refreshAll(ctx)
				continue
			}
			s.refresh(ctx, n.Extra)
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				s.logger.Warn("docstore listener ping failed", slog.String("error", err.Error()))
			}
		}
	}
}

// changed tells other processes about a write. Local watchers are refreshed
// directly unless this store's own listener will deliver the notification.
func (s *Store) changed(ctx context.Context, collection string) {
	err := s.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", NotifyChannel, collection).Error
	if err != nil {
		s.logger.Warn("docstore notify failed", slog.String("collection", collection), slog.String("error", err.Error()))
	}
	if err == nil && s.listening.Load() {
		return
	}
	s.refresh(context.WithoutCancel(ctx), collection)
}

func (s *Store) refresh(ctx context.Context, collection string) {
	for _, w := range s.snapshotWatchers() {
		if w.query.Collection == collection {
			s.refreshWatcher(ctx, w)
		}
	}
}

func (s *Store) refreshAll(ctx context.Context) {
	for _, w := range s.snapshotWatchers() {
		s.refreshWatcher(ctx, w)
	}
}

func (s *Store) refreshWatcher(ctx context.Context, w *watcher) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if w.feed.Closed() {
		return
	}
	docs, err := s.Query(ctx, w.query)
	if err != nil {
		s.logger.Warn("docstore refresh failed",
			slog.String("collection", w.query.Collection),
			slog.String("error", err.Error()))
		return
	}
	w.feed.Publish(docstore.Snapshot{Docs: docs, ReadTime: time.Now().UTC()})
}

func (s *Store) snapshotWatchers() []*watcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		out = append(out, w)
	}
	return out
}

// serverTime reads the database clock so every instance stamps documents
// from the same source.
func (s *Store) serverTime(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.db.WithContext(ctx).Raw("SELECT clock_timestamp()").Scan(&now).Error; err != nil {
		return time.Time{}, err
	}
	return s.clock.Next(now), nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres document store not configured")
	}
	return nil
}

type documentRecord struct {
	Seq        int64     `gorm:"primaryKey;column:seq;autoIncrement"`
	Collection string    `gorm:"column:collection;size:128;uniqueIndex:idx_documents_path,priority:1"`
	ID         string    `gorm:"column:id;size:128;uniqueIndex:idx_documents_path,priority:2"`
	Data       string    `gorm:"column:data;type:jsonb"`
	CreateTime time.Time `gorm:"column:create_time"`
	UpdateTime time.Time `gorm:"column:update_time"`
}

func (documentRecord) TableName() string { return "documents" }

func toDocument(r documentRecord) docstore.Document {
	return docstore.Document{
		ID:         r.ID,
		Collection: r.Collection,
		Data:       json.RawMessage(r.Data),
		CreateTime: r.CreateTime.UTC(),
		UpdateTime: r.UpdateTime.UTC(),
	}
}

type subscription struct {
	feed *feed.Latest[docstore.Snapshot]
}

func (s subscription) Snapshots() <-chan docstore.Snapshot { return s.feed.C() }

func (s subscription) Close() error { return s.feed.Close() }
