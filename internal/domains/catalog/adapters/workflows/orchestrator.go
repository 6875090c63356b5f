package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	catalogworkflows "github.com/Apurer/sabor-arte/internal/platform/temporal/workflows/catalog"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

var (
	_ ports.ResetOrchestrator = (*TemporalCatalogWorkflows)(nil)
	_ ports.ResetOrchestrator = (*InlineCatalogWorkflows)(nil)
)

// TemporalCatalogWorkflows runs catalog resets on a Temporal cluster.
type TemporalCatalogWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCatalogWorkflows wires a Temporal client into the orchestrator.
func NewTemporalCatalogWorkflows(c client.Client) *TemporalCatalogWorkflows {
	return &TemporalCatalogWorkflows{client: c, taskQueue: catalogworkflows.CatalogResetTaskQueue}
}

// ResetCatalog starts the reset workflow and waits for its report.
func (o *TemporalCatalogWorkflows) ResetCatalog(ctx context.Context, cmd ports.ResetCommand) (domain.ResetReport, error) {
	if o == nil || o.client == nil {
		return domain.ResetReport{}, errors.New("temporal catalog workflows not configured")
	}
	if !cmd.Confirmed {
		return domain.ResetReport{}, fault.Validation(application.ErrResetNotConfirmed)
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildResetWorkflowID(cmd, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		catalogworkflows.CatalogResetWorkflowName,
		catalogworkflows.CatalogResetWorkflowInput{Command: cmd, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(cmd.RequestID) == "" {
			return domain.ResetReport{}, fault.Persistence(err)
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var report domain.ResetReport
	if err := run.Get(ctx, &report); err != nil {
		return report, fault.Persistence(err)
	}
	return report, reportError(report)
}

// InlineCatalogWorkflows runs the reset in-process, for development or when Temporal is unavailable.
type InlineCatalogWorkflows struct {
	service ports.Service
}

// NewInlineCatalogWorkflows wraps the catalog service for synchronous execution.
func NewInlineCatalogWorkflows(service ports.Service) *InlineCatalogWorkflows {
	return &InlineCatalogWorkflows{service: service}
}

// ResetCatalog delegates to the application service without durable orchestration.
func (o *InlineCatalogWorkflows) ResetCatalog(ctx context.Context, cmd ports.ResetCommand) (domain.ResetReport, error) {
	if o == nil || o.service == nil {
		return domain.ResetReport{}, errors.New("inline catalog workflows not configured")
	}
	return o.service.ResetCatalog(ctx, cmd)
}

func reportError(report domain.ResetReport) error {
	if report.Complete() {
		return nil
	}
	return fault.Persistence(fmt.Errorf("catalog reset incomplete: %s", strings.Join(report.Errors, "; ")))
}

func buildResetWorkflowID(cmd ports.ResetCommand, traceComponent string) string {
	if key := strings.TrimSpace(cmd.RequestID); key != "" {
		return fmt.Sprintf("catalog-reset-req-%s", hashRequestID(key))
	}
	return fmt.Sprintf("catalog-reset-%d-%s", time.Now().UnixNano(), traceComponent)
}

func hashRequestID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceComponent := workflowTraceID(ctx); traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
