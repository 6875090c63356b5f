package memory

import (
	"context"
	"sync"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	"github.com/Apurer/sabor-arte/internal/domains/identity/ports"
)

var _ ports.AccountRepository = (*AccountRepository)(nil)

// AccountRepository keeps accounts in memory.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: map[string]domain.Account{}}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.Email]; ok {
		return ports.ErrEmailTaken
	}
	r.accounts[account.Email] = *account
	return nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrAccountNotFound
	}
	return &account, nil
}
