package ports

import (
	"context"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

// Service exposes catalog administration to adapters.
type Service interface {
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (domain.MenuItem, error)
	CreateItem(ctx context.Context, draft domain.Draft) (domain.MenuItem, error)
	UpdateItem(ctx context.Context, id string, draft domain.Draft) (domain.MenuItem, error)
	DeleteItem(ctx context.Context, id string) error
	// PurgeItems deletes every item and stops before returning if any delete failed.
	PurgeItems(ctx context.Context) (domain.ResetReport, error)
	// InsertItems inserts drafts in order and stops at the first failure.
	InsertItems(ctx context.Context, drafts []domain.Draft) (domain.ResetReport, error)
	ResetCatalog(ctx context.Context, cmd ResetCommand) (domain.ResetReport, error)
}

// ResetCommand replaces the whole catalog with Defaults. Confirmed must be set
// by the caller after asking the operator; the reset is not reversible.
type ResetCommand struct {
	Defaults  []domain.Draft `json:"defaults"`
	Confirmed bool           `json:"confirmed"`
	RequestID string         `json:"requestId,omitempty"`
}

// ResetOrchestrator runs a catalog reset, durably when a workflow engine is available.
type ResetOrchestrator interface {
	ResetCatalog(ctx context.Context, cmd ResetCommand) (domain.ResetReport, error)
}
