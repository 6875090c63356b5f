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

	"github.com/Apurer/sabor-arte/internal/domains/cart/ports"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

const tracerName = "github.com/Apurer/sabor-arte/internal/domains/cart/adapters/observability/service"

// Service decorates the cart manager with tracing, logging, and metrics.
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

// New wraps the cart manager.
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

func (s *Service) View(ctx context.Context, session string) ports.View {
	return s.inner.View(ctx, session)
}

func (s *Service) AddItem(ctx context.Context, session, itemID string) (ports.View, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem", trace.WithAttributes(attribute.String("menu_item.id", itemID)))
	defer span.End()
	view, err := s.inner.AddItem(ctx, session, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelWarn, "cart add rejected", slog.String("itemId", itemID), slog.String("error", err.Error()))
		return view, err
	}
	span.SetAttributes(attribute.Int("cart.item_count", view.ItemCount))
	s.metrics.recordMutation(ctx, "add")
	return view, nil
}

func (s *Service) RemoveItem(ctx context.Context, session, itemID string) ports.View {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem", trace.WithAttributes(attribute.String("menu_item.id", itemID)))
	defer span.End()
	s.metrics.recordMutation(ctx, "remove")
	return s.inner.RemoveItem(ctx, session, itemID)
}

func (s *Service) ChangeQuantity(ctx context.Context, session, itemID string, delta int) ports.View {
	ctx, span := s.tracer.Start(ctx, "CartService.ChangeQuantity", trace.WithAttributes(
		attribute.String("menu_item.id", itemID),
		attribute.Int("cart.delta", delta),
	))
	defer span.End()
	s.metrics.recordMutation(ctx, "change_quantity")
	return s.inner.ChangeQuantity(ctx, session, itemID, delta)
}

func (s *Service) SetCategoryFilter(ctx context.Context, session, filter string) (catalogdomain.Filter, error) {
	return s.inner.SetCategoryFilter(ctx, session, filter)
}

func (s *Service) CategoryFilter(ctx context.Context, session string) catalogdomain.Filter {
	return s.inner.CategoryFilter(ctx, session)
}

func (s *Service) FilteredMenu(ctx context.Context, session string) []catalogdomain.MenuItem {
	return s.inner.FilteredMenu(ctx, session)
}

func (s *Service) Checkout(ctx context.Context, session string, fn ports.CheckoutFunc) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Checkout")
	defer span.End()
	if err := s.inner.Checkout(ctx, session, fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Service) Drop(ctx context.Context, session string) {
	s.inner.Drop(ctx, session)
	s.logger.LogAttrs(ctx, slog.LevelDebug, "cart session dropped")
}

type serviceMetrics struct {
	mutations metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	mutations, _ := m.Int64Counter("cart.service.mutations", metric.WithDescription("Number of cart changes by operation"))
	return serviceMetrics{mutations: mutations}
}

func (m serviceMetrics) recordMutation(ctx context.Context, op string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
