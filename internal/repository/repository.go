package repository

import (
	"context"
	"errors"
	"time"

	"github.com/utafrali/storefront-admin/internal/domain"
)

// ErrStatusChanged is returned by OrderRepository.UpdateStatus when the
// order's current status no longer matches the expected one.
var ErrStatusChanged = errors.New("order status changed concurrently")

// BrandFilter defines filter criteria for listing brands.
type BrandFilter struct {
	Search         *string
	IsVisible      *bool
	IncludeDeleted bool
	Page           int
	PerPage        int
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	BrandID        *string
	Type           *domain.ProductType
	IsVisible      *bool
	IsFeatured     *bool
	Search         *string
	IncludeDeleted bool
	Page           int
	PerPage        int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	Status  *domain.OrderStatus
	Page    int
	PerPage int
}

// BrandRepository defines the interface for brand persistence operations.
type BrandRepository interface {
	// Create inserts a new brand. A uniqueness violation is reported as a
	// DuplicateField error naming the collided field.
	Create(ctx context.Context, brand *domain.Brand) error

	// GetByID retrieves a brand by id, soft-deleted or not.
	GetByID(ctx context.Context, id string) (*domain.Brand, error)

	// List returns brands matching the filter along with the total count.
	List(ctx context.Context, filter BrandFilter) ([]domain.Brand, int, error)

	// Update writes the mutable attributes of a brand. The slug is never
	// written.
	Update(ctx context.Context, brand *domain.Brand) error

	// SoftDelete marks a brand deleted. Deleting a deleted brand is a no-op.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Conflicts returns the fields among name, slug and url already used by
	// another brand, deleted ones included, in that order. excludeID is
	// ignored when empty.
	Conflicts(ctx context.Context, brand *domain.Brand, excludeID string) ([]string, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product. Uniqueness and brand reference
	// violations are reported as DuplicateField and ForeignKey errors.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by id, soft-deleted or not.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its slug, soft-deleted or not.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update writes the mutable attributes of a product. The slug is never
	// written.
	Update(ctx context.Context, product *domain.Product) error

	// SoftDelete marks a product deleted. Deleting a deleted product is a no-op.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Conflicts returns the fields among name, slug and sku already used by
	// another product, deleted ones included, in that order.
	Conflicts(ctx context.Context, product *domain.Product, excludeID string) ([]string, error)

	// ActiveIDs returns the subset of ids that name existing, non-deleted
	// products.
	ActiveIDs(ctx context.Context, ids []string) ([]string, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order with its product references.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by id.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus moves an order from change.From to change.To and appends
	// change to its history, atomically. It returns ErrStatusChanged when no
	// order with that id is currently in change.From.
	UpdateStatus(ctx context.Context, change domain.StatusChange) error

	// History returns the status changes of an order, oldest first.
	History(ctx context.Context, orderID string) ([]domain.StatusChange, error)
}
