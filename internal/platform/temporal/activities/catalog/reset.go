package catalog

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
)

const (
	// PurgeMenuActivityName deletes every menu item.
	PurgeMenuActivityName = "catalog.activities.PurgeMenu"
	// InsertMenuActivityName inserts the default menu in order.
	InsertMenuActivityName = "catalog.activities.InsertMenu"
)

// Activities groups activities that operate on the catalog bounded context.
// Partial failures come back inside the report rather than as activity errors
// so the workflow result still tells the operator how far the reset got.
type Activities struct {
	service catalogports.Service
}

// NewActivities wires the catalog service into the Temporal activities bundle.
func NewActivities(service catalogports.Service) *Activities {
	return &Activities{service: service}
}

// PurgeMenu deletes every menu item.
func (a *Activities) PurgeMenu(ctx context.Context) (catalogdomain.ResetReport, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("catalog purge activity not initialized")
		return catalogdomain.ResetReport{}, errors.New("catalog purge activity not initialized")
	}
	logger.Info("PurgeMenu activity started")
	report, err := a.service.PurgeItems(ctx)
	if err != nil && report.DeleteFailures == 0 {
		logger.Error("PurgeMenu activity failed", "error", err)
		return report, temporal.NewNonRetryableApplicationError(err.Error(), "CatalogPurgeFailed", err)
	}
	logger.Info("PurgeMenu activity completed", "deleted", report.Deleted, "failed", report.DeleteFailures)
	return report, nil
}

// InsertMenu inserts drafts in order, stopping at the first failure.
func (a *Activities) InsertMenu(ctx context.Context, drafts []catalogdomain.Draft) (catalogdomain.ResetReport, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("catalog insert activity not initialized")
		return catalogdomain.ResetReport{}, errors.New("catalog insert activity not initialized")
	}
	logger.Info("InsertMenu activity started", "items", len(drafts))
	report, err := a.service.InsertItems(ctx, drafts)
	if err != nil && report.InsertFailures == 0 {
		logger.Error("InsertMenu activity failed", "error", err)
		return report, temporal.NewNonRetryableApplicationError(err.Error(), "CatalogInsertFailed", err)
	}
	logger.Info("InsertMenu activity completed", "inserted", report.Inserted, "failed", report.InsertFailures)
	return report, nil
}
