package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	identitypostgres "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/sabor-arte/internal/platform/observability"
	platformpostgres "github.com/Apurer/sabor-arte/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var dsn string
	var timeout time.Duration
	var logLevel string
	flagSet := pflag.NewFlagSet("session-purger", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN (default: $POSTGRES_DSN)")
	flagSet.DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	flagSet.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: platformobservability.ParseLevel(logLevel)}))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, cleanup, err := platformpostgres.Open(ctx, dsn, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	if db == nil {
		return fmt.Errorf("no PostgreSQL DSN configured; sessions only persist in PostgreSQL")
	}

	purged, err := identitypostgres.NewSessionStore(db).PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	logger.Info("session purge completed", slog.Int64("purged", purged))
	return nil
}
