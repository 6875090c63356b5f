package application

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	cartdomain "github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
)

// Service implements checkout and the staff status workflow.
type Service struct {
	repo        ports.Repository
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	policy      domain.TransitionPolicy
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key replay on checkout.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithPolicy sets which status transitions staff may write.
func WithPolicy(p domain.TransitionPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithLogger receives event publishing failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: ports.NoopPublisher{},
		policy:    domain.Permissive{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SubmitOrder validates the form, persists a pending order with a copy of the
// cart lines and clears the cart. Validation and store failures leave the cart
// as it was.
//
// With an idempotency key, a retry from the same session returns the order
// the key already produced when the payload matches, or when the cart is
// empty because the first attempt consumed it.
func (s *Service) SubmitOrder(ctx context.Context, cart *cartdomain.Cart, input ports.SubmitInput) (*domain.Order, error) {
	if cart == nil {
		return nil, mapError(domain.ErrEmptyCart)
	}
	lines := cart.Lines()
	key := strings.TrimSpace(input.IdempotencyKey)
	var hash string
	if key != "" && s.idempotency != nil {
		var err error
		hash, err = FingerprintCheckout(input.Customer, input.Table, lines)
		if err != nil {
			return nil, mapError(err)
		}
		replayed, err := s.replay(ctx, key, input.Session, hash, len(lines) == 0)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	order, err := domain.NewOrder(input.Customer, input.Table, lines)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Insert(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}

	if hash != "" {
		now := s.now().UTC()
		_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			Session:     input.Session,
			RequestHash: hash,
			OrderID:     saved.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			// The order is stored; only replay protection is lost.
			s.logger.WarnContext(ctx, "failed to record idempotency key",
				slog.String("order_id", saved.ID), slog.String("error", err.Error()))
		}
	}

	cart.Clear()
	s.publish(ctx, domain.OrderPlaced{
		BaseEvent: domain.BaseEvent{Timestamp: s.now().UTC()},
		OrderID:   saved.ID,
		Customer:  saved.Customer,
		Table:     saved.Table,
		Total:     saved.Total,
		ItemCount: saved.ItemCount(),
	})
	return saved, nil
}

func (s *Service) replay(ctx context.Context, key, session, hash string, cartEmpty bool) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, mapError(err)
	}
	if record == nil {
		return nil, nil
	}
	if record.Session != session || (record.RequestHash != hash && !cartEmpty) {
		return nil, mapError(ports.ErrIdempotencyConflict)
	}
	order, err := s.repo.Get(ctx, record.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// AdvanceStatus writes a new status subject to the configured policy.
func (s *Service) AdvanceStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, mapError(err)
	}
	order, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.policy.Allow(order.Status, next); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, mapError(err)
	}
	previous := order.Status
	order.Status = next
	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:      domain.BaseEvent{Timestamp: s.now().UTC()},
		OrderID:        order.ID,
		Status:         next,
		PreviousStatus: previous,
	})
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// WatchOrders streams the order list after every change.
func (s *Service) WatchOrders(ctx context.Context) (ports.OrderFeed, error) {
	f, err := s.repo.Watch(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return f, nil
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order event",
			slog.String("event", event.EventName()), slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
