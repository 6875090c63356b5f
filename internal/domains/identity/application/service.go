package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	"github.com/Apurer/sabor-arte/internal/domains/identity/ports"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service implements the identity use cases.
type Service struct {
	accounts ports.AccountRepository
	sessions ports.SessionStore
	ttl      time.Duration
	now      func() time.Time
	newID    func() string

	bootstrapEmail    string
	bootstrapPassword string

	mu        sync.RWMutex
	listeners map[uint64]ports.Listener
	nextID    uint64
}

// Option configures the service.
type Option func(*Service)

// WithSessionTTL sets how long issued sessions stay valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBootstrapAdmin registers the given account the first time a credential
// sign-in with exactly these credentials fails.
func WithBootstrapAdmin(email, password string) Option {
	return func(s *Service) {
		s.bootstrapEmail = domain.NormalizeEmail(email)
		s.bootstrapPassword = password
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(accounts ports.AccountRepository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		accounts:  accounts,
		sessions:  sessions,
		ttl:       DefaultSessionTTL,
		now:       time.Now,
		newID:     uuid.NewString,
		listeners: map[uint64]ports.Listener{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SignInAnonymously issues a session for a fresh anonymous identity.
func (s *Service) SignInAnonymously(ctx context.Context) (domain.Session, error) {
	return s.issue(ctx, domain.Identity{UID: s.newID(), Anonymous: true})
}

// SignInWithCredentials verifies email and password. A failed attempt with the
// bootstrap admin credentials registers that account instead.
func (s *Service) SignInWithCredentials(ctx context.Context, email, password string) (domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Session{}, mapError(ports.ErrInvalidCredentials)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil && account.CheckPassword(password):
		return s.issue(ctx, account.Identity())
	case err == nil, errors.Is(err, ports.ErrAccountNotFound):
		if s.isBootstrap(email, password) && account == nil {
			return s.RegisterCredentials(ctx, email, password)
		}
		return domain.Session{}, mapError(ports.ErrInvalidCredentials)
	default:
		return domain.Session{}, mapError(err)
	}
}

// RegisterCredentials creates an account and signs it in.
func (s *Service) RegisterCredentials(ctx context.Context, email, password string) (domain.Session, error) {
	account, err := domain.NewAccount(s.newID(), email, password)
	if err != nil {
		return domain.Session{}, mapError(err)
	}
	account.CreatedAt = s.now().UTC()
	if err := s.accounts.Create(ctx, account); err != nil {
		return domain.Session{}, mapError(err)
	}
	return s.issue(ctx, account.Identity())
}

// SignOut ends the session and notifies listeners.
func (s *Service) SignOut(ctx context.Context, token string) error {
	session, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, session.Token); err != nil {
		return mapError(err)
	}
	s.notify(domain.Change{Kind: domain.SignedOut, Identity: session.Identity, Token: session.Token})
	return nil
}

// Resolve returns the identity behind a live session token.
func (s *Service) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	session, err := s.lookup(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	return session.Identity, nil
}

// Subscribe registers listener for identity changes.
func (s *Service) Subscribe(listener ports.Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// PurgeExpired drops expired sessions from the store.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (s *Service) lookup(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		s.notify(domain.Change{Kind: domain.SignedOut, Identity: session.Identity, Token: token})
		return nil, mapError(ports.ErrSessionNotFound)
	}
	return session, nil
}

func (s *Service) issue(ctx context.Context, identity domain.Identity) (domain.Session, error) {
	session := domain.Session{
		Token:     s.newID(),
		Identity:  identity,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, mapError(err)
	}
	s.notify(domain.Change{Kind: domain.SignedIn, Identity: identity, Token: session.Token})
	return session, nil
}

func (s *Service) isBootstrap(email, password string) bool {
	return s.bootstrapEmail != "" && email == s.bootstrapEmail && password == s.bootstrapPassword
}

func (s *Service) notify(change domain.Change) {
	s.mu.RLock()
	listeners := make([]ports.Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()
	for _, l := range listeners {
		l(change)
	}
}

var _ ports.Service = (*Service)(nil)
