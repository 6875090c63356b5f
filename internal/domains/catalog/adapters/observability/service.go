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

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
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

// New wraps the core catalog service.
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

func (s *Service) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListItems")
	defer span.End()
	items, err := s.inner.ListItems(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list menu items")
	}
	span.SetAttributes(attribute.Int("catalog.items", len(items)))
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.MenuItem, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetItem", trace.WithAttributes(attribute.String("menu_item.id", id)))
	defer span.End()
	item, err := s.inner.GetItem(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *Service) CreateItem(ctx context.Context, draft domain.Draft) (domain.MenuItem, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateItem", trace.WithAttributes(attribute.String("menu_item.name", draft.Name)))
	defer span.End()
	item, err := s.inner.CreateItem(ctx, draft)
	if err != nil {
		return domain.MenuItem{}, s.handleError(ctx, span, err, "failed to create menu item", slog.String("name", draft.Name))
	}
	s.metrics.recordMutation(ctx, "create")
	s.logInfo(ctx, "menu item created", slog.String("id", item.ID), slog.String("name", item.Name))
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, draft domain.Draft) (domain.MenuItem, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateItem", trace.WithAttributes(attribute.String("menu_item.id", id)))
	defer span.End()
	item, err := s.inner.UpdateItem(ctx, id, draft)
	if err != nil {
		return domain.MenuItem{}, s.handleError(ctx, span, err, "failed to update menu item", slog.String("id", id))
	}
	s.metrics.recordMutation(ctx, "update")
	s.logInfo(ctx, "menu item updated", slog.String("id", id))
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteItem", trace.WithAttributes(attribute.String("menu_item.id", id)))
	defer span.End()
	if err := s.inner.DeleteItem(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete menu item", slog.String("id", id))
	}
	s.metrics.recordMutation(ctx, "delete")
	s.logInfo(ctx, "menu item deleted", slog.String("id", id))
	return nil
}

func (s *Service) PurgeItems(ctx context.Context) (domain.ResetReport, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.PurgeItems")
	defer span.End()
	report, err := s.inner.PurgeItems(ctx)
	span.SetAttributes(attribute.Int("catalog.deleted", report.Deleted), attribute.Int("catalog.delete_failures", report.DeleteFailures))
	if err != nil {
		return report, s.handleError(ctx, span, err, "catalog purge incomplete", slog.Int("deleted", report.Deleted), slog.Int("failed", report.DeleteFailures))
	}
	return report, nil
}

func (s *Service) InsertItems(ctx context.Context, drafts []domain.Draft) (domain.ResetReport, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.InsertItems", trace.WithAttributes(attribute.Int("catalog.drafts", len(drafts))))
	defer span.End()
	report, err := s.inner.InsertItems(ctx, drafts)
	span.SetAttributes(attribute.Int("catalog.inserted", report.Inserted))
	if err != nil {
		return report, s.handleError(ctx, span, err, "catalog insert incomplete", slog.Int("inserted", report.Inserted), slog.Int("failed", report.InsertFailures))
	}
	return report, nil
}

func (s *Service) ResetCatalog(ctx context.Context, cmd ports.ResetCommand) (domain.ResetReport, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ResetCatalog", trace.WithAttributes(
		attribute.Int("catalog.defaults", len(cmd.Defaults)),
		attribute.Bool("catalog.reset.confirmed", cmd.Confirmed),
	))
	defer span.End()
	s.logInfo(ctx, "catalog reset requested", slog.Int("defaults", len(cmd.Defaults)))
	report, err := s.inner.ResetCatalog(ctx, cmd)
	if err != nil {
		return report, s.handleError(ctx, span, err, "catalog reset failed",
			slog.Int("deleted", report.Deleted), slog.Int("inserted", report.Inserted))
	}
	s.metrics.recordReset(ctx)
	s.logInfo(ctx, "catalog reset completed", slog.Int("deleted", report.Deleted), slog.Int("inserted", report.Inserted))
	return report, nil
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
	mutations metric.Int64Counter
	resets    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	mutations, _ := m.Int64Counter("catalog.service.mutations", metric.WithDescription("Number of menu item writes by operation"))
	resets, _ := m.Int64Counter("catalog.service.resets", metric.WithDescription("Number of completed catalog resets"))
	return serviceMetrics{mutations: mutations, resets: resets}
}

func (m serviceMetrics) recordMutation(ctx context.Context, op string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	}
}

func (m serviceMetrics) recordReset(ctx context.Context) {
	if m.resets != nil {
		m.resets.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
