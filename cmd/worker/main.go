package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	catalogdocstore "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/docstore"
	catalogobs "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	docmemory "github.com/Apurer/sabor-arte/internal/platform/docstore/memory"
	docpostgres "github.com/Apurer/sabor-arte/internal/platform/docstore/postgres"
	platformobservability "github.com/Apurer/sabor-arte/internal/platform/observability"
	platformpostgres "github.com/Apurer/sabor-arte/internal/platform/postgres"
	catalogactivities "github.com/Apurer/sabor-arte/internal/platform/temporal/activities/catalog"
	temporalclient "github.com/Apurer/sabor-arte/internal/platform/temporal/client"
	catalogworkflows "github.com/Apurer/sabor-arte/internal/platform/temporal/workflows/catalog"
)

func main() {
	ctx := context.Background()
	const serviceName = "sabor-arte-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.ConfigFromEnv(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store, cleanupStore := buildDocumentStore(ctx, logger)
	defer cleanupStore()
	catalogService := catalogobs.New(
		catalogapp.NewService(catalogdocstore.NewRepository(store, logger)),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	activities := catalogactivities.NewActivities(catalogService)

	cfg := temporalclient.Config{
		Address:   os.Getenv("TEMPORAL_ADDRESS"),
		Namespace: os.Getenv("TEMPORAL_NAMESPACE"),
	}.WithDefaults()
	temporalClient, err := temporalclient.Dial(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, catalogworkflows.CatalogResetTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(catalogworkflows.CatalogResetWorkflow, workflow.RegisterOptions{Name: catalogworkflows.CatalogResetWorkflowName})
	w.RegisterActivityWithOptions(activities.PurgeMenu, activity.RegisterOptions{Name: catalogactivities.PurgeMenuActivityName})
	w.RegisterActivityWithOptions(activities.InsertMenu, activity.RegisterOptions{Name: catalogactivities.InsertMenuActivityName})

	logger.Info("worker listening", slog.String("taskQueue", catalogworkflows.CatalogResetTaskQueue), slog.String("namespace", cfg.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildDocumentStore(ctx context.Context, logger *slog.Logger) (docstore.Store, func()) {
	db, cleanup, err := platformpostgres.Open(ctx, os.Getenv("POSTGRES_DSN"), logger)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return docmemory.NewStore(), func() {}
	}
	if db == nil {
		return docmemory.NewStore(), cleanup
	}
	logger.Info("worker document store configured with postgres")
	return docpostgres.NewStore(db, docpostgres.WithLogger(logger)), cleanup
}
