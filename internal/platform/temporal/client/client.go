// Package client dials Temporal with tracing and structured logging wired in.
package client

import (
	"errors"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	temporallog "go.temporal.io/sdk/log"

	platformobservability "github.com/Apurer/sabor-arte/internal/platform/observability"
)

// ErrDisabled is returned when Temporal has been switched off by configuration.
var ErrDisabled = errors.New("temporal disabled by configuration")

// Config selects the Temporal frontend.
type Config struct {
	Address   string
	Namespace string
	Disabled  bool
}

// WithDefaults fills blank fields with the SDK defaults.
func (c Config) WithDefaults() Config {
	if c.Address == "" {
		c.Address = client.DefaultHostPort
	}
	if c.Namespace == "" {
		c.Namespace = client.DefaultNamespace
	}
	return c
}

// Dial connects to Temporal. tracerName names the tracer used by the
// OpenTelemetry interceptor.
func Dial(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.Disabled {
		return nil, ErrDisabled
	}
	cfg = cfg.WithDefaults()
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    temporallog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
