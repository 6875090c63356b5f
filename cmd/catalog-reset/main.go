// catalog-reset replaces the whole menu with the default items. It deletes
// every menu item first and does not roll back, so it refuses to run without
// --yes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	catalogdocstore "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/docstore"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/seed"
	catalogworkflows "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/workflows"
	catalogapp "github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	docpostgres "github.com/Apurer/sabor-arte/internal/platform/docstore/postgres"
	platformobservability "github.com/Apurer/sabor-arte/internal/platform/observability"
	platformpostgres "github.com/Apurer/sabor-arte/internal/platform/postgres"
	temporalclient "github.com/Apurer/sabor-arte/internal/platform/temporal/client"
)

var errNotConfirmed = errors.New("refusing to reset the catalog without --yes")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		yes       bool
		dsn       string
		menuFile  string
		durable   bool
		requestID string
		timeout   time.Duration
	)
	flagSet := pflag.NewFlagSet("catalog-reset", pflag.ContinueOnError)
	flagSet.BoolVarP(&yes, "yes", "y", false, "confirm that every menu item will be deleted")
	flagSet.StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN (default: $POSTGRES_DSN)")
	flagSet.StringVar(&menuFile, "menu", os.Getenv("CATALOG_SEED_FILE"), "YAML menu to restore (default: built-in menu)")
	flagSet.BoolVar(&durable, "temporal", false, "run the reset as a Temporal workflow")
	flagSet.StringVar(&requestID, "request-id", "", "deduplicates repeated durable resets")
	flagSet.DurationVar(&timeout, "timeout", 2*time.Minute, "give up after this long")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if !yes {
		return errNotConfirmed
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defaults, err := seed.Load(menuFile)
	if err != nil {
		return err
	}
	cmd := catalogports.ResetCommand{Defaults: defaults, Confirmed: true, RequestID: requestID}

	var resets catalogports.ResetOrchestrator
	if durable {
		instruments := &platformobservability.Instruments{Logger: logger}
		cfg := temporalclient.Config{
			Address:   os.Getenv("TEMPORAL_ADDRESS"),
			Namespace: os.Getenv("TEMPORAL_NAMESPACE"),
		}
		c, err := temporalclient.Dial(cfg, instruments, "catalog-reset")
		if err != nil {
			return fmt.Errorf("dial temporal: %w", err)
		}
		defer c.Close()
		resets = catalogworkflows.NewTemporalCatalogWorkflows(c)
	} else {
		db, cleanup, err := platformpostgres.Open(ctx, dsn, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		if db == nil {
			return fmt.Errorf("no PostgreSQL DSN configured; an in-memory catalog cannot be reset from outside the API")
		}
		store := docpostgres.NewStore(db, docpostgres.WithLogger(logger))
		resets = catalogworkflows.NewInlineCatalogWorkflows(catalogapp.NewService(catalogdocstore.NewRepository(store, logger)))
	}

	report, resetErr := resets.ResetCatalog(ctx, cmd)
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(report); err != nil {
		return err
	}
	return resetErr
}
