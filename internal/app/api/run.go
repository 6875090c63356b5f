package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	restaurantserver "github.com/Apurer/sabor-arte/go"

	cartobs "github.com/Apurer/sabor-arte/internal/domains/cart/adapters/observability"
	cartapp "github.com/Apurer/sabor-arte/internal/domains/cart/application"
	catalogdocstore "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/docstore"
	catalogobs "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/observability"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/seed"
	catalogworkflows "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/workflows"
	catalogapp "github.com/Apurer/sabor-arte/internal/domains/catalog/application"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	identitymemory "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/memory"
	identityobs "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/observability"
	identitypostgres "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/Apurer/sabor-arte/internal/domains/identity/application"
	identitydomain "github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	identityports "github.com/Apurer/sabor-arte/internal/domains/identity/ports"
	orderdocstore "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/docstore"
	ordermemory "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/persistence/postgres"
	orderrabbitmq "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/rabbitmq"
	orderapp "github.com/Apurer/sabor-arte/internal/domains/orders/application"
	orderports "github.com/Apurer/sabor-arte/internal/domains/orders/ports"
	"github.com/Apurer/sabor-arte/internal/platform/docstore"
	docmemory "github.com/Apurer/sabor-arte/internal/platform/docstore/memory"
	docpostgres "github.com/Apurer/sabor-arte/internal/platform/docstore/postgres"
	platformobservability "github.com/Apurer/sabor-arte/internal/platform/observability"
	platformpostgres "github.com/Apurer/sabor-arte/internal/platform/postgres"
	temporalclient "github.com/Apurer/sabor-arte/internal/platform/temporal/client"
)

const serviceName = "sabor-arte-api"

// catalogReadyTimeout bounds how long startup waits for the first menu snapshot.
const catalogReadyTimeout = 10 * time.Second

// Run boots the restaurant HTTP API with observability, stores, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.ConfigFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, closeDB, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		logger.Warn("postgres unavailable, falling back to in-memory adapters", slog.String("error", err.Error()))
		db = nil
	}
	defer closeDB()
	store := buildDocumentStore(ctx, db, cfg.PostgresDSN, logger)

	defaults, err := seed.Load(cfg.CatalogSeedFile)
	if err != nil {
		return fmt.Errorf("load default menu: %w", err)
	}

	catalogRepo := catalogdocstore.NewRepository(store, logger)
	catalogService := catalogobs.New(
		catalogapp.NewService(catalogRepo),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	seeder := catalogapp.NewSeeder(catalogService, catalogdocstore.NewSeedMarker(store), defaults, logger)
	mirror := catalogapp.NewMirror(seeder, logger)
	go func() {
		if err := mirror.Run(ctx, catalogRepo); err != nil {
			logger.Error("catalog mirror stopped", slog.String("error", err.Error()))
		}
	}()

	accounts, sessions := buildIdentityStores(db)
	identityCore := identityapp.NewService(accounts, sessions,
		identityapp.WithSessionTTL(cfg.SessionTTL),
		identityapp.WithBootstrapAdmin(cfg.AdminEmail, cfg.AdminPassword),
	)
	identityService := identityobs.New(
		identityCore,
		identityobs.WithLogger(logger),
		identityobs.WithTracer(instruments.Tracer("internal.identity.application")),
		identityobs.WithMeter(instruments.Meter("internal.identity.application")),
	)

	cartManager := cartapp.NewManager(mirror)
	cartService := cartobs.New(
		cartManager,
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)
	unsubscribe := identityService.Subscribe(dropCartsOnSignOut(ctx, cartManager))
	defer unsubscribe()

	idempotency, forgetKeys := buildIdempotencyStore(db)
	publisher, closePublisher := buildPublisher(cfg.RabbitMQURL, logger)
	defer closePublisher()
	orderService := orderobs.New(
		orderapp.NewService(
			orderdocstore.NewRepository(store, logger),
			orderapp.WithIdempotencyStore(idempotency),
			orderapp.WithPublisher(publisher),
			orderapp.WithPolicy(cfg.StatusPolicy),
			orderapp.WithLogger(logger),
		),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var resets catalogports.ResetOrchestrator = catalogworkflows.NewInlineCatalogWorkflows(catalogService)
	if temporalClient, err := temporalclient.Dial(cfg.Temporal, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running catalog resets inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		resets = catalogworkflows.NewTemporalCatalogWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.Temporal.Namespace))
	}

	if cfg.SessionPurgeInterval > 0 {
		go purgeSessions(ctx, identityCore, cartManager, forgetKeys, cfg, logger)
	}

	select {
	case <-mirror.Ready():
	case <-time.After(catalogReadyTimeout):
		logger.Warn("catalog not mirrored yet, serving an empty menu until it arrives")
	}

	handlers := restaurantserver.ApiHandleFunctions{
		AuthAPI:        restaurantserver.NewAuthAPI(identityService),
		MenuAPI:        restaurantserver.NewMenuAPI(mirror, catalogService, cartService),
		CartAPI:        restaurantserver.NewCartAPI(cartService, orderService),
		AdminMenuAPI:   restaurantserver.NewAdminMenuAPI(catalogService, resets, defaults),
		AdminOrdersAPI: restaurantserver.NewAdminOrdersAPI(orderService),
	}
	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := restaurantserver.NewRouterWithGinEngine(engine, handlers)

	return serve(ctx, &http.Server{Addr: ":" + cfg.Port, Handler: router}, logger)
}

func serve(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("restaurant API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("restaurant API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func buildDocumentStore(ctx context.Context, db *gorm.DB, dsn string, logger *slog.Logger) docstore.Store {
	if db == nil {
		return docmemory.NewStore()
	}
	store := docpostgres.NewStore(db, docpostgres.WithLogger(logger))
	go func() {
		if err := store.Listen(ctx, dsn); err != nil {
			logger.Error("docstore listener stopped, changes from other processes will be missed", slog.String("error", err.Error()))
		}
	}()
	logger.Info("document store configured with postgres")
	return store
}

func buildIdentityStores(db *gorm.DB) (identityports.AccountRepository, identityports.SessionStore) {
	if db == nil {
		return identitymemory.NewAccountRepository(), identitymemory.NewSessionStore()
	}
	return identitypostgres.NewAccountRepository(db), identitypostgres.NewSessionStore(db)
}

// buildIdempotencyStore also returns the sweep run on the purge tick; only the
// in-memory store needs one.
func buildIdempotencyStore(db *gorm.DB) (orderports.IdempotencyStore, func() int) {
	if db == nil {
		store := ordermemory.NewIdempotencyStore()
		return store, store.Forget
	}
	return orderpostgres.NewIdempotencyStore(db), func() int { return 0 }
}

func buildPublisher(url string, logger *slog.Logger) (orderports.EventPublisher, func()) {
	if url == "" {
		logger.Info("RABBITMQ_URL not set, order events are not published")
		return orderports.NoopPublisher{}, func() {}
	}
	conn, err := orderrabbitmq.Dial(url)
	if err != nil {
		logger.Warn("rabbitmq unavailable, order events are not published", slog.String("error", err.Error()))
		return orderports.NoopPublisher{}, func() {}
	}
	logger.Info("order events published to rabbitmq", slog.String("exchange", orderrabbitmq.Exchange))
	return orderrabbitmq.NewPublisher(conn), func() { _ = conn.Close() }
}

// dropCartsOnSignOut forgets the cart of a session once its token is signed
// out or expires. Other sessions of the same account keep theirs.
func dropCartsOnSignOut(ctx context.Context, carts *cartapp.Manager) identityports.Listener {
	return func(change identitydomain.Change) {
		if change.Kind == identitydomain.SignedOut {
			carts.Drop(ctx, change.Token)
		}
	}
}

func purgeSessions(ctx context.Context, identity *identityapp.Service, carts *cartapp.Manager, forgetKeys func() int, cfg Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.SessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := identity.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			idle := carts.PurgeIdle(cfg.SessionTTL)
			keys := forgetKeys()
			if n > 0 || idle > 0 || keys > 0 {
				logger.Info("expired sessions purged",
					slog.Int64("sessions", n),
					slog.Int("carts", idle),
					slog.Int("checkoutKeys", keys))
			}
		}
	}
}
