package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	"github.com/Apurer/sabor-arte/internal/domains/identity/ports"
)

const tracerName = "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/observability/service"

// Service decorates the identity service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core identity service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) SignInAnonymously(ctx context.Context) (domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "IdentityService.SignInAnonymously")
	defer span.End()
	session, err := s.inner.SignInAnonymously(ctx)
	if err != nil {
		return domain.Session{}, s.handleError(ctx, span, err, "anonymous sign-in failed")
	}
	span.SetAttributes(attribute.String("identity.uid", session.Identity.UID))
	s.metrics.recordSignIn(ctx, "anonymous")
	return session, nil
}

func (s *Service) SignInWithCredentials(ctx context.Context, email, password string) (domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "IdentityService.SignInWithCredentials", trace.WithAttributes(attribute.String("identity.email", email)))
	defer span.End()
	session, err := s.inner.SignInWithCredentials(ctx, email, password)
	if err != nil {
		return domain.Session{}, s.handleError(ctx, span, err, "credential sign-in failed", slog.String("email", email))
	}
	s.metrics.recordSignIn(ctx, "credentials")
	s.logInfo(ctx, "staff signed in", slog.String("uid", session.Identity.UID))
	return session, nil
}

func (s *Service) RegisterCredentials(ctx context.Context, email, password string) (domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "IdentityService.RegisterCredentials", trace.WithAttributes(attribute.String("identity.email", email)))
	defer span.End()
	session, err := s.inner.RegisterCredentials(ctx, email, password)
	if err != nil {
		return domain.Session{}, s.handleError(ctx, span, err, "registration failed", slog.String("email", email))
	}
	s.metrics.recordSignIn(ctx, "registration")
	s.logInfo(ctx, "account registered", slog.String("uid", session.Identity.UID))
	return session, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "IdentityService.SignOut")
	defer span.End()
	if err := s.inner.SignOut(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "sign-out failed")
	}
	s.metrics.recordSignOut(ctx)
	return nil
}

func (s *Service) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "IdentityService.Resolve")
	defer span.End()
	identity, err := s.inner.Resolve(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Identity{}, err
	}
	span.SetAttributes(attribute.String("identity.uid", identity.UID), attribute.Bool("identity.anonymous", identity.Anonymous))
	return identity, nil
}

func (s *Service) Subscribe(listener ports.Listener) func() {
	return s.inner.Subscribe(listener)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

type serviceMetrics struct {
	signIns  metric.Int64Counter
	signOuts metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	signIns, _ := m.Int64Counter("identity.service.sign_ins", metric.WithDescription("Number of issued sessions by method"))
	signOuts, _ := m.Int64Counter("identity.service.sign_outs", metric.WithDescription("Number of ended sessions"))
	return serviceMetrics{signIns: signIns, signOuts: signOuts}
}

func (m serviceMetrics) recordSignIn(ctx context.Context, method string) {
	if m.signIns != nil {
		m.signIns.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
	}
}

func (m serviceMetrics) recordSignOut(ctx context.Context) {
	if m.signOuts != nil {
		m.signOuts.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
