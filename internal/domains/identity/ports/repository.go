package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AccountRepository stores credentialed accounts keyed by email.
type AccountRepository interface {
	// Create stores a new account or fails with ErrEmailTaken.
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// SessionStore abstracts session token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes sessions expired at now and reports how many.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
