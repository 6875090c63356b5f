package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload or session.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord links a client-supplied checkout key to the order it produced.
type IdempotencyRecord struct {
	Key         string
	Session     string
	RequestHash string
	OrderID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists checkout keys so retries can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record; if the key already exists for the same session and order, the stored record is returned.
	// When the key exists but points elsewhere, ErrIdempotencyConflict is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
