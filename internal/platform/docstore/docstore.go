// Package docstore defines the document-store collaborator the domains persist
// through: schemaless JSON documents grouped in collections, one-shot queries,
// live snapshot subscriptions and server-assigned timestamps.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a document path does not resolve.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by Create when the path is taken.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrInvalidPath is returned for malformed collection or document paths.
	ErrInvalidPath = errors.New("invalid document path")
	// ErrInvalidField is returned for field names that cannot be queried.
	ErrInvalidField = errors.New("invalid field name")
)

// Fields is a partial document keyed by top-level field name.
type Fields map[string]any

// Document is a stored document plus store-managed metadata.
type Document struct {
	ID         string
	Collection string
	Data       json.RawMessage
	CreateTime time.Time
	UpdateTime time.Time
}

// Path returns "collection/id".
func (d Document) Path() string {
	return Path(d.Collection, d.ID)
}

// DataTo decodes the document body into v.
func (d Document) DataTo(v any) error {
	if len(d.Data) == 0 {
		return fmt.Errorf("document %s has no data", d.Path())
	}
	return json.Unmarshal(d.Data, v)
}

// Direction orders query results.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// OrderBy sorts by a top-level field.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Query selects every document of a collection, optionally ordered.
// Without ordering, documents come back in insertion order.
type Query struct {
	Collection string
	Orders     []OrderBy
}

// Collection starts a query over a collection.
func Collection(name string) Query {
	return Query{Collection: name}
}

// OrderedBy returns a copy of q with an additional sort key.
func (q Query) OrderedBy(field string, dir Direction) Query {
	orders := append([]OrderBy{}, q.Orders...)
	q.Orders = append(orders, OrderBy{Field: field, Direction: dir})
	return q
}

// Validate checks collection and field names.
func (q Query) Validate() error {
	if err := validateSegment(q.Collection); err != nil {
		return err
	}
	for _, o := range q.Orders {
		if !fieldPattern.MatchString(o.Field) {
			return fmt.Errorf("%w: %q", ErrInvalidField, o.Field)
		}
	}
	return nil
}

// Snapshot is the full result of a query at one point in time.
type Snapshot struct {
	Docs     []Document
	ReadTime time.Time
}

// Subscription streams snapshots of a query. Undelivered snapshots are replaced
// by newer ones, so a consumer may observe several changes as a single update.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Close() error
}

// Store is the document-store collaborator.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query) (Subscription, error)
	// Insert stores fields under a store-assigned id and returns that id.
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
	// Create stores fields under a caller-chosen path, failing with ErrAlreadyExists.
	Create(ctx context.Context, path string, fields Fields) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, path string, fields Fields) error
	Delete(ctx context.Context, path string) error
}

// ListOnce reads a whole collection without subscribing.
func ListOnce(ctx context.Context, s Store, collection string) ([]Document, error) {
	return s.Query(ctx, Collection(collection))
}

// Path joins a collection and a document id.
func Path(collection, id string) string {
	return collection + "/" + id
}

// SplitPath splits "collection/id".
func SplitPath(path string) (string, string, error) {
	collection, id, ok := strings.Cut(path, "/")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if err := validateSegment(collection); err != nil {
		return "", "", err
	}
	if err := validateSegment(id); err != nil {
		return "", "", err
	}
	return collection, id, nil
}

var (
	fieldPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

func validateSegment(segment string) error {
	if !segmentPattern.MatchString(segment) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, segment)
	}
	return nil
}
