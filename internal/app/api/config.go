package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	identityapp "github.com/Apurer/sabor-arte/internal/domains/identity/application"
	orderdomain "github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	temporalclient "github.com/Apurer/sabor-arte/internal/platform/temporal/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                 string
	PostgresDSN          string
	Temporal             temporalclient.Config
	RabbitMQURL          string
	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	StatusPolicy         orderdomain.TransitionPolicy
	AdminEmail           string
	AdminPassword        string
	CatalogSeedFile      string
}

// LoadConfig reads an optional .env file and the environment, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        envDefault("PORT", "8080"),
		PostgresDSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		Temporal: temporalclient.Config{
			Address:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
			Namespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
			Disabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		},
		RabbitMQURL:     strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		SessionTTL:      identityapp.DefaultSessionTTL,
		AdminEmail:      strings.TrimSpace(os.Getenv("ADMIN_BOOTSTRAP_EMAIL")),
		AdminPassword:   os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),
		CatalogSeedFile: strings.TrimSpace(os.Getenv("CATALOG_SEED_FILE")),
	}

	hours, err := positiveInt("SESSION_TTL_HOURS")
	if err != nil {
		return Config{}, err
	}
	if hours > 0 {
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	minutes, err := positiveInt("SESSION_PURGE_INTERVAL_MINUTES")
	if err != nil {
		return Config{}, err
	}
	cfg.SessionPurgeInterval = time.Duration(minutes) * time.Minute

	policy, err := orderdomain.ParsePolicy(envDefault("ORDER_STATUS_POLICY", orderdomain.PolicyPermissive))
	if err != nil {
		return Config{}, fmt.Errorf("ORDER_STATUS_POLICY: %w", err)
	}
	cfg.StatusPolicy = policy

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set together")
	}
	return cfg, nil
}

// positiveInt reads key as a positive integer; unset yields zero.
func positiveInt(key string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
