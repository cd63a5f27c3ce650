package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/repository/memory"
	storagemem "github.com/utafrali/storefront-admin/internal/storage/memory"
	"github.com/utafrali/storefront-admin/pkg/slug"
)

// --- Mock Order Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, change domain.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *mockOrderRepository) History(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.StatusChange), args.Error(1)
}

// --- Recording Publisher ---

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) record(topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *recordingPublisher) PublishBrandCreated(context.Context, *domain.Brand) error {
	return p.record("brand.created")
}

func (p *recordingPublisher) PublishBrandUpdated(context.Context, *domain.Brand) error {
	return p.record("brand.updated")
}

func (p *recordingPublisher) PublishBrandDeleted(context.Context, string) error {
	return p.record("brand.deleted")
}

func (p *recordingPublisher) PublishProductCreated(context.Context, *domain.Product) error {
	return p.record("product.created")
}

func (p *recordingPublisher) PublishProductUpdated(context.Context, *domain.Product) error {
	return p.record("product.updated")
}

func (p *recordingPublisher) PublishProductDeleted(context.Context, string) error {
	return p.record("product.deleted")
}

func (p *recordingPublisher) PublishOrderCreated(context.Context, *domain.Order) error {
	return p.record("order.created")
}

func (p *recordingPublisher) PublishOrderStatusChanged(context.Context, domain.StatusChange) error {
	return p.record("order.status_changed")
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store    *memory.Store
	assets   *storagemem.Storage
	events   *recordingPublisher
	brands   *BrandService
	products *ProductService
	orders   *OrderService
}

func newFixture(t *testing.T, opts ...ProductOption) *fixture {
	t.Helper()
	store := memory.NewStore()
	assets := storagemem.New("https://cdn.example.com")
	events := &recordingPublisher{}
	logger := newTestLogger()
	return &fixture{
		store:    store,
		assets:   assets,
		events:   events,
		brands:   NewBrandService(store.Brands, nil, events, logger),
		products: NewProductService(store.Products, store.Brands, assets, nil, events, logger, opts...),
		orders:   NewOrderService(store.Orders, store.Products, events, nil, logger),
	}
}

func (f *fixture) brand(t *testing.T, name string) *domain.Brand {
	t.Helper()
	b, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{
		Name: name,
		URL:  "https://" + slug.Generate(name) + ".example.com",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) product(t *testing.T, brandID, name, sku string) *domain.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), productInput(brandID, name, sku))
	require.NoError(t, err)
	return p
}

func productInput(brandID, name, sku string) *CreateProductInput {
	return &CreateProductInput{
		Name:     name,
		SKU:      sku,
		Price:    "19.99",
		Quantity: 10,
		Type:     "deliverable",
		Image:    "products/" + sku + ".png",
		BrandID:  brandID,
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
