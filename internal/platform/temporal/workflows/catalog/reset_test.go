package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	catalogdocstore "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/docstore"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/seed"
	catalogapp "github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	docmemory "github.com/Apurer/sabor-arte/internal/platform/docstore/memory"
	catalogactivities "github.com/Apurer/sabor-arte/internal/platform/temporal/activities/catalog"
	catalogworkflows "github.com/Apurer/sabor-arte/internal/platform/temporal/workflows/catalog"
)

func newEnv(t *testing.T, store *docmemory.Store) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	service := catalogapp.NewService(catalogdocstore.NewRepository(store, nil))
	acts := catalogactivities.NewActivities(service)
	env.RegisterWorkflow(catalogworkflows.CatalogResetWorkflow)
	env.RegisterActivityWithOptions(acts.PurgeMenu, activity.RegisterOptions{Name: catalogactivities.PurgeMenuActivityName})
	env.RegisterActivityWithOptions(acts.InsertMenu, activity.RegisterOptions{Name: catalogactivities.InsertMenuActivityName})
	return env
}

func defaults(t *testing.T) []catalogdomain.Draft {
	t.Helper()
	drafts, err := seed.Default()
	require.NoError(t, err)
	return drafts
}

func TestCatalogResetWorkflow_ReplacesCatalog(t *testing.T) {
	store := docmemory.NewStore()
	env := newEnv(t, store)

	env.ExecuteWorkflow(catalogworkflows.CatalogResetWorkflow, catalogworkflows.CatalogResetWorkflowInput{
		Command: catalogports.ResetCommand{Defaults: defaults(t), Confirmed: true},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report catalogdomain.ResetReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, 6, report.Inserted)
	require.True(t, report.Complete())
}

func TestCatalogResetWorkflow_StopsAfterFailedDeletes(t *testing.T) {
	store := docmemory.NewStore()
	service := catalogapp.NewService(catalogdocstore.NewRepository(store, nil))
	_, err := service.InsertItems(context.Background(), defaults(t))
	require.NoError(t, err)
	store.FailOn("delete", errors.New("permission denied"))

	env := newEnv(t, store)
	env.ExecuteWorkflow(catalogworkflows.CatalogResetWorkflow, catalogworkflows.CatalogResetWorkflowInput{
		Command: catalogports.ResetCommand{Defaults: defaults(t), Confirmed: true},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report catalogdomain.ResetReport
	require.NoError(t, env.GetWorkflowResult(&report))
	require.Equal(t, 6, report.DeleteFailures)
	require.Zero(t, report.Inserted)
	require.False(t, report.Complete())
}
