package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/event"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// OrderService drives the order status lifecycle.
type OrderService struct {
	repo     repository.OrderRepository
	products repository.ProductRepository
	producer event.Publisher
	metrics  *Metrics
	logger   *slog.Logger
}

// NewOrderService creates a new order service. A nil producer disables event
// publishing and nil metrics are kept unregistered.
func NewOrderService(repo repository.OrderRepository, products repository.ProductRepository, producer event.Publisher, metrics *Metrics, logger *slog.Logger) *OrderService {
	if producer == nil {
		producer = event.Noop{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &OrderService{repo: repo, products: products, producer: producer, metrics: metrics, logger: logger}
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	ProductIDs []string
}

// CreateOrder creates a pending order referencing live products.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	if len(input.ProductIDs) == 0 {
		return nil, apperrors.RequiredField("product_ids")
	}

	ids := make([]string, 0, len(input.ProductIDs))
	var missing []string
	for _, id := range input.ProductIDs {
		id = strings.TrimSpace(id)
		if !isID(id) {
			missing = append(missing, id)
			continue
		}
		ids = append(ids, id)
	}

	active, err := s.products.ActiveIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check order products: %w", err)
	}
	live := make(map[string]struct{}, len(active))
	for _, id := range active {
		live[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := live[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.ForeignKey("product_ids", strings.Join(missing, ","))
	}

	at := now()
	order := &domain.Order{
		ID:         uuid.New().String(),
		Status:     domain.OrderStatusPending,
		ProductIDs: ids,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int("products", len(ids)),
	)
	return order, nil
}

// GetOrder retrieves an order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if !isID(id) {
		return nil, apperrors.NotFound("order", id)
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns a page of orders and the total number of matches.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, invalidStatus()
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// Transition moves an order to target. The write is a compare-and-swap on
// the status read here; when another request changed the status first, the
// order is re-read and the edge re-evaluated from its new status. An edge
// that is still legal reports a Conflict so the caller can retry.
func (s *OrderService) Transition(ctx context.Context, id string, target domain.OrderStatus) (*domain.Order, error) {
	if !target.IsValid() {
		return nil, invalidStatus()
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	next, change, err := domain.Transition(*order, target, now())
	if err != nil {
		s.metrics.rejected.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, change); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, s.lostRace(ctx, id, target)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	s.metrics.transitions.WithLabelValues(string(change.From), string(change.To)).Inc()

	if err := s.producer.PublishOrderStatusChanged(ctx, change); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", id),
		slog.String("from", string(change.From)),
		slog.String("to", string(change.To)),
	)
	return &next, nil
}

func (s *OrderService) lostRace(ctx context.Context, id string, target domain.OrderStatus) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get order by id: %w", err)
	}
	if !current.CanTransitionTo(target) {
		s.metrics.rejected.WithLabelValues("invalid").Inc()
		return apperrors.InvalidTransition(string(current.Status), string(target))
	}
	s.metrics.rejected.WithLabelValues("conflict").Inc()
	return apperrors.Conflict(fmt.Sprintf("order %s changed status concurrently, now %s", id, current.Status))
}

// History returns the status changes of an order, oldest first.
func (s *OrderService) History(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	changes, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order history: %w", err)
	}
	return changes, nil
}

// AllowedTransitions returns the statuses reachable from status in one step.
func (s *OrderService) AllowedTransitions(status domain.OrderStatus) ([]domain.OrderStatus, error) {
	if !status.IsValid() {
		return nil, invalidStatus()
	}
	return domain.AllowedTransitions(status), nil
}

// StatusGraph returns every status with its outgoing edges.
func (s *OrderService) StatusGraph() map[domain.OrderStatus][]domain.OrderStatus {
	return domain.TransitionGraph()
}

func invalidStatus() *apperrors.AppError {
	names := make([]string, 0, len(domain.ValidStatuses()))
	for _, st := range domain.ValidStatuses() {
		names = append(names, string(st))
	}
	return apperrors.InvalidFormat("status", "one of "+strings.Join(names, ", "))
}
