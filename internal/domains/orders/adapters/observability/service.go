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

	cartdomain "github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
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

// New wraps the core orders service.
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

func (s *Service) SubmitOrder(ctx context.Context, cart *cartdomain.Cart, input ports.SubmitInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.SubmitOrder", trace.WithAttributes(
		attribute.String("order.table", input.Table),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()
	order, err := s.inner.SubmitOrder(ctx, cart, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit order", slog.String("table", input.Table))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order submitted",
		slog.String("order_id", order.ID),
		slog.String("table", order.Table),
		slog.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *Service) AdvanceStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.AdvanceStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.status", status),
	))
	defer span.End()
	order, err := s.inner.AdvanceStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance order status", slog.String("order_id", id), slog.String("status", status))
	}
	s.metrics.recordStatusChange(ctx, order.Status)
	s.logInfo(ctx, "order status changed", slog.String("order_id", id), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()
	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ListOrders")
	defer span.End()
	orders, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) WatchOrders(ctx context.Context) (ports.OrderFeed, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.WatchOrders")
	defer span.End()
	f, err := s.inner.WatchOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to watch orders")
	}
	return f, nil
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
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	placed        metric.Int64Counter
	statusChanges metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	statusChanges, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Number of order status writes by target status"))
	return serviceMetrics{placed: placed, statusChanges: statusChanges}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStatusChange(ctx context.Context, status domain.Status) {
	if m.statusChanges != nil {
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
