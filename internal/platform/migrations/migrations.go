package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the document store, identity and checkout
// idempotency tables.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&documentRecord{},
		&accountRecord{},
		&sessionRecord{},
		&orderIdempotencyRecord{},
	)
}

// Document schema mirrors the docstore Postgres adapter. Seq keeps insertion
// order; data holds the JSON fields.
type documentRecord struct {
	Seq        int64     `gorm:"primaryKey;column:seq;autoIncrement"`
	Collection string    `gorm:"column:collection;size:128;uniqueIndex:idx_documents_path,priority:1"`
	ID         string    `gorm:"column:id;size:128;uniqueIndex:idx_documents_path,priority:2"`
	Data       string    `gorm:"column:data;type:jsonb;not null;default:'{}'"`
	CreateTime time.Time `gorm:"column:create_time"`
	UpdateTime time.Time `gorm:"column:update_time"`
}

func (documentRecord) TableName() string { return "documents" }

// Account schema mirrors the identity account repository.
type accountRecord struct {
	UID          string    `gorm:"primaryKey;column:uid;size:64"`
	Email        string    `gorm:"column:email;uniqueIndex;size:320"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountRecord) TableName() string { return "accounts" }

// Session schema mirrors the identity session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	UID       string    `gorm:"column:uid;size:64;index"`
	Email     string    `gorm:"column:email;size:320"`
	Anonymous bool      `gorm:"column:anonymous"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Checkout idempotency schema mirrors the orders Postgres adapter.
type orderIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	Session     string    `gorm:"column:session;size:64"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:64"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (orderIdempotencyRecord) TableName() string { return "order_idempotency_keys" }
