package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	"github.com/Apurer/sabor-arte/internal/domains/identity/ports"
)

var _ ports.AccountRepository = (*AccountRepository)(nil)

// AccountRepository persists staff accounts in PostgreSQL using GORM.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type accountRecord struct {
	UID          string    `gorm:"primaryKey;column:uid;size:64"`
	Email        string    `gorm:"column:email;uniqueIndex;size:320"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountRecord) TableName() string { return "accounts" }

// Create inserts the account unless the email is already registered.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if account == nil {
		return errors.New("account is nil")
	}
	record := accountRecord{
		UID:          account.UID,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrEmailTaken
	}
	return nil
}

// GetByEmail fetches an account by its normalised email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record accountRecord
	if err := r.db.WithContext(ctx).First(&record, "email = ?", domain.NormalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrAccountNotFound
		}
		return nil, err
	}
	return &domain.Account{
		UID:          record.UID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

func (r *AccountRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres account repository not configured")
	}
	return nil
}
