package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	catalogactivities "github.com/Apurer/sabor-arte/internal/platform/temporal/activities/catalog"
)

// RunCatalogResetSequence deletes the catalog and inserts the defaults. Neither
// step is retried: a repeated insert would duplicate items, and a reset that
// failed half way is reported to the operator instead.
func RunCatalogResetSequence(ctx workflow.Context, cmd catalogports.ResetCommand) (catalogdomain.ResetReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("catalog reset sequence started", "defaults", len(cmd.Defaults))
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var report catalogdomain.ResetReport
	if err := workflow.ExecuteActivity(ctx, catalogactivities.PurgeMenuActivityName).Get(ctx, &report); err != nil {
		logger.Error("catalog reset sequence purge failed", "error", err)
		return report, err
	}
	if report.DeleteFailures > 0 {
		logger.Warn("catalog reset sequence stopped after failed deletes", "failed", report.DeleteFailures)
		return report, nil
	}

	var inserted catalogdomain.ResetReport
	if err := workflow.ExecuteActivity(ctx, catalogactivities.InsertMenuActivityName, cmd.Defaults).Get(ctx, &inserted); err != nil {
		logger.Error("catalog reset sequence insert failed", "error", err)
		return report, err
	}
	report.Inserted = inserted.Inserted
	report.InsertFailures = inserted.InsertFailures
	report.Errors = append(report.Errors, inserted.Errors...)
	logger.Info("catalog reset sequence completed", "deleted", report.Deleted, "inserted", report.Inserted)
	return report, nil
}
