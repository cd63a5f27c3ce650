package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront-admin/internal/cache"
	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/event"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/storage"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/slug"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo         repository.ProductRepository
	brands       repository.BrandRepository
	assets       storage.Storage
	cache        cache.Cache
	producer     event.Publisher
	logger       *slog.Logger
	verifyImages bool
}

// ProductOption configures a ProductService.
type ProductOption func(*ProductService)

// WithImageVerification makes create and update reject image keys the asset
// store does not hold. An unreachable asset store is logged and tolerated.
func WithImageVerification() ProductOption {
	return func(s *ProductService) { s.verifyImages = true }
}

// NewProductService creates a new product service. A nil cache or producer
// disables caching or event publishing.
func NewProductService(
	repo repository.ProductRepository,
	brands repository.BrandRepository,
	assets storage.Storage,
	c cache.Cache,
	producer event.Publisher,
	logger *slog.Logger,
	opts ...ProductOption,
) *ProductService {
	if c == nil {
		c = cache.Noop{}
	}
	if producer == nil {
		producer = event.Noop{}
	}
	s := &ProductService{
		repo:     repo,
		brands:   brands,
		assets:   assets,
		cache:    c,
		producer: producer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProductInput holds the parameters for creating a product. Price is a
// decimal string; an empty price means 0. A zero PublishedAt means today.
type CreateProductInput struct {
	Name        string
	Description string
	SKU         string
	Price       string
	Quantity    int
	Type        string
	IsVisible   *bool
	IsFeatured  *bool
	PublishedAt time.Time
	Image       string
	BrandID     string
}

// UpdateProductInput holds a partial product update. Nil fields are left
// unchanged and Slug is ignored.
type UpdateProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	SKU         *string
	Price       *string
	Quantity    *int
	Type        *string
	IsVisible   *bool
	IsFeatured  *bool
	PublishedAt *time.Time
	Image       *string
	BrandID     *string
}

func (in *UpdateProductInput) patch() (domain.ProductPatch, *apperrors.AppError) {
	p := domain.ProductPatch{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		SKU:         in.SKU,
		Quantity:    in.Quantity,
		IsVisible:   in.IsVisible,
		IsFeatured:  in.IsFeatured,
		Image:       in.Image,
		BrandID:     in.BrandID,
	}
	if in.Type != nil {
		t := domain.ProductType(strings.TrimSpace(*in.Type))
		p.Type = &t
	}
	if in.PublishedAt != nil {
		d := domain.PublishDate(*in.PublishedAt)
		p.PublishedAt = &d
	}
	if in.Price != nil {
		// Only create treats a blank price as zero; an update must not
		// silently overwrite the stored one.
		if strings.TrimSpace(*in.Price) == "" {
			return p, apperrors.RequiredField("price")
		}
		price, err := parsePrice(*in.Price)
		if err != nil {
			return p, err
		}
		p.Price = &price
	}
	return p, nil
}

func parsePrice(raw string) (decimal.Decimal, *apperrors.AppError) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := domain.ParsePrice(raw)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return decimal.Zero, appErr
		}
		return decimal.Zero, apperrors.InvalidFormat("price", "a decimal number such as 10.50")
	}
	return d, nil
}

// CreateProduct validates input, checks the brand reference and uniqueness,
// derives the slug and stores the product.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	product, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
		slog.String("sku", product.SKU),
	)
	return product, nil
}

// ValidateProduct runs every check CreateProduct runs without storing
// anything.
func (s *ProductService) ValidateProduct(ctx context.Context, input *CreateProductInput) error {
	_, err := s.prepare(ctx, input)
	return err
}

func (s *ProductService) prepare(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	at := now()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		SKU:         strings.TrimSpace(input.SKU),
		Quantity:    input.Quantity,
		Type:        domain.ProductType(strings.TrimSpace(input.Type)),
		IsVisible:   true,
		PublishedAt: domain.PublishDate(at),
		Image:       strings.TrimSpace(input.Image),
		BrandID:     strings.TrimSpace(input.BrandID),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if input.IsVisible != nil {
		product.IsVisible = *input.IsVisible
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if !input.PublishedAt.IsZero() {
		product.PublishedAt = domain.PublishDate(input.PublishedAt)
	}
	product.Slug = slug.Generate(product.Name)

	price, priceErr := parsePrice(input.Price)
	product.Price = price

	slugErr := domain.ValidateSlug(product.Name, product.Slug)
	if err := validate(product, priceErr, slugErr); err != nil {
		return nil, err
	}

	if err := s.checkBrand(ctx, product); err != nil {
		return nil, err
	}
	if err := s.checkImage(ctx, product.Image); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, product, ""); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by id. Soft-deleted products still resolve.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if !isID(id) {
		return nil, apperrors.NotFound("product", id)
	}
	product, err := cached(ctx, s.cache, cache.ProductKey(id), func() (*domain.Product, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// The brand name lives under the brand's own key, which brand
		// writes invalidate.
		p.BrandName = ""
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	s.fillBrandName(ctx, product)
	return product, nil
}

func (s *ProductService) fillBrandName(ctx context.Context, product *domain.Product) {
	brand, err := cached(ctx, s.cache, cache.BrandKey(product.BrandID), func() (*domain.Brand, error) {
		return s.brands.GetByID(ctx, product.BrandID)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve product brand name",
			slog.String("product_id", product.ID),
			slog.String("brand_id", product.BrandID),
			slog.String("error", err.Error()),
		)
		return
	}
	product.BrandName = brand.Name
}

// GetProductBySlug retrieves a product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// GetProductDetail resolves a product by id or slug and enriches it with its
// brand and the public URL of its image. Enrichment failures are logged and
// leave the corresponding field empty.
func (s *ProductService) GetProductDetail(ctx context.Context, idOrSlug string) (*domain.ProductDetail, error) {
	var (
		product *domain.Product
		err     error
	)
	if isID(idOrSlug) {
		product, err = s.GetProduct(ctx, idOrSlug)
	} else {
		product, err = s.GetProductBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}

	detail := &domain.ProductDetail{Product: *product}

	brand, err := cached(ctx, s.cache, cache.BrandKey(product.BrandID), func() (*domain.Brand, error) {
		return s.brands.GetByID(ctx, product.BrandID)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load product brand",
			slog.String("product_id", product.ID),
			slog.String("brand_id", product.BrandID),
			slog.String("error", err.Error()),
		)
	} else {
		detail.Brand = brand
	}

	url, err := s.assets.URL(ctx, product.Image)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve product image",
			slog.String("product_id", product.ID),
			slog.String("image", product.Image),
			slog.String("error", err.Error()),
		)
	} else {
		detail.ImageURL = url
	}

	return detail, nil
}

// ListProducts returns a page of products and the total number of matches.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct applies a partial update. Only changed references are
// re-checked; uniqueness is always re-checked against other products.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	if !isID(id) {
		return nil, apperrors.NotFound("product", id)
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	patch, priceErr := input.patch()
	prevBrand, prevImage := product.BrandID, product.Image
	if patch.Apply(product, now()) {
		s.logger.DebugContext(ctx, "product slug change ignored",
			slog.String("product_id", id),
			slog.String("slug", product.Slug),
		)
	}
	product.Name = strings.TrimSpace(product.Name)
	product.Image = strings.TrimSpace(product.Image)
	product.BrandID = strings.TrimSpace(product.BrandID)

	if err := validate(product, priceErr); err != nil {
		return nil, err
	}
	if product.BrandID != prevBrand {
		if err := s.checkBrand(ctx, product); err != nil {
			return nil, err
		}
	}
	if product.Image != prevImage {
		if err := s.checkImage(ctx, product.Image); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, product, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.cache.Delete(ctx, cache.ProductKey(id))

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id))
	return product, nil
}

// SoftDeleteProduct marks a product deleted. Deleting it again is a no-op.
func (s *ProductService) SoftDeleteProduct(ctx context.Context, id string) error {
	if !isID(id) {
		return apperrors.NotFound("product", id)
	}
	if err := s.repo.SoftDelete(ctx, id, now()); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.cache.Delete(ctx, cache.ProductKey(id))

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// SoftDeleteProducts deletes every product in ids. Unknown ids are collected
// in the result; any other failure stops the batch.
func (s *ProductService) SoftDeleteProducts(ctx context.Context, ids []string) (*BulkResult, error) {
	res := newBulkResult()
	for _, id := range ids {
		err := s.SoftDeleteProduct(ctx, id)
		switch {
		case err == nil:
			res.Deleted = append(res.Deleted, id)
		case isNotFound(err):
			res.Missing = append(res.Missing, id)
		default:
			return res, err
		}
	}
	return res, nil
}

// checkBrand requires product.BrandID to name a live brand and copies its
// name onto the product.
func (s *ProductService) checkBrand(ctx context.Context, product *domain.Product) error {
	if !isID(product.BrandID) {
		return apperrors.ForeignKey("brand_id", product.BrandID)
	}
	brand, err := s.brands.GetByID(ctx, product.BrandID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.ForeignKey("brand_id", product.BrandID)
		}
		return fmt.Errorf("check product brand: %w", err)
	}
	if brand.IsDeleted() {
		return apperrors.ForeignKey("brand_id", product.BrandID)
	}
	product.BrandName = brand.Name
	return nil
}

func (s *ProductService) checkImage(ctx context.Context, key string) error {
	if !s.verifyImages {
		return nil
	}
	ok, err := s.assets.Exists(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "asset store unavailable, accepting image key",
			slog.String("image", key),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if !ok {
		return apperrors.ForeignKey("image", key)
	}
	return nil
}

func (s *ProductService) checkUnique(ctx context.Context, product *domain.Product, excludeID string) error {
	taken, err := s.repo.Conflicts(ctx, product, excludeID)
	if err != nil {
		return fmt.Errorf("check product uniqueness: %w", err)
	}
	if len(taken) > 0 {
		return apperrors.DuplicateFields("product", taken...)
	}
	return nil
}
