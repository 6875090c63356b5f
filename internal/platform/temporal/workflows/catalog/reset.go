package catalog

import (
	"go.temporal.io/sdk/workflow"

	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	"github.com/Apurer/sabor-arte/internal/platform/temporal/sequences"
)

const (
	// CatalogResetTaskQueue is polled by cmd/worker.
	CatalogResetTaskQueue = "catalog-reset"
	// CatalogResetWorkflowName is the registered workflow type.
	CatalogResetWorkflowName = "catalog.workflows.Reset"
)

// CatalogResetWorkflowInput is the workflow argument.
type CatalogResetWorkflowInput struct {
	Command catalogports.ResetCommand
	TraceID string
}

// CatalogResetWorkflow replaces the catalog with the supplied defaults.
func CatalogResetWorkflow(ctx workflow.Context, input CatalogResetWorkflowInput) (catalogdomain.ResetReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("catalog reset workflow started", "traceId", input.TraceID)
	return sequences.RunCatalogResetSequence(ctx, input.Command)
}
