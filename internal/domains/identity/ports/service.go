package ports

import (
	"context"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
)

// Listener receives identity changes. It is called synchronously and must not block.
type Listener func(domain.Change)

// Service is the identity collaborator used by the transport and the cart manager.
type Service interface {
	SignInAnonymously(ctx context.Context) (domain.Session, error)
	SignInWithCredentials(ctx context.Context, email, password string) (domain.Session, error)
	RegisterCredentials(ctx context.Context, email, password string) (domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (domain.Identity, error)
	Subscribe(listener Listener) (unsubscribe func())
}
