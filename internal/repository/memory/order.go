package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// orderRecord carries its own lock so status changes on one order never wait
// on another.
type orderRecord struct {
	mu      sync.Mutex
	order   domain.Order
	history []domain.StatusChange
}

func (rec *orderRecord) snapshot() domain.Order {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	o := rec.order
	o.ProductIDs = append([]string(nil), rec.order.ProductIDs...)
	return o
}

// OrderRepository implements repository.OrderRepository in memory.
type OrderRepository struct {
	products *ProductRepository

	mu     sync.RWMutex
	orders map[string]*orderRecord
}

// Create stores a new order. Every product id must name a stored product.
func (r *OrderRepository) Create(_ context.Context, o *domain.Order) error {
	for _, id := range o.ProductIDs {
		if !r.products.exists(id) {
			return apperrors.ForeignKey("product_ids", id)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; ok {
		return apperrors.DuplicateFields("order", "id")
	}
	stored := *o
	stored.ProductIDs = append([]string(nil), o.ProductIDs...)
	r.orders[o.ID] = &orderRecord{order: stored}
	return nil
}

// GetByID returns a copy of the order.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	rec, ok := r.record(id)
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	o := rec.snapshot()
	return &o, nil
}

// List returns orders, newest first, optionally filtered by status.
func (r *OrderRepository) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	r.mu.RLock()
	recs := make([]*orderRecord, 0, len(r.orders))
	for _, rec := range r.orders {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	var matched []domain.Order
	for _, rec := range recs {
		o := rec.snapshot()
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := window(len(matched), filter.Page, filter.PerPage)
	return matched[start:end], len(matched), nil
}

// UpdateStatus compares and swaps the order status under the order's own
// lock and appends the change to its history.
func (r *OrderRepository) UpdateStatus(_ context.Context, change domain.StatusChange) error {
	rec, ok := r.record(change.OrderID)
	if !ok {
		return repository.ErrStatusChanged
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.order.Status != change.From {
		return repository.ErrStatusChanged
	}
	rec.order.Status = change.To
	rec.order.UpdatedAt = change.ChangedAt
	rec.history = append(rec.history, change)
	return nil
}

// History returns a copy of the order's status changes, oldest first.
func (r *OrderRepository) History(_ context.Context, orderID string) ([]domain.StatusChange, error) {
	rec, ok := r.record(orderID)
	if !ok {
		return []domain.StatusChange{}, nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]domain.StatusChange{}, rec.history...), nil
}

func (r *OrderRepository) record(id string) (*orderRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.orders[id]
	return rec, ok
}
