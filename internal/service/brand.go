package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/storefront-admin/internal/cache"
	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/event"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/slug"
)

// BrandService implements the business logic for brand operations.
type BrandService struct {
	repo     repository.BrandRepository
	cache    cache.Cache
	producer event.Publisher
	logger   *slog.Logger
}

// NewBrandService creates a new brand service. A nil cache or producer
// disables caching or event publishing.
func NewBrandService(repo repository.BrandRepository, c cache.Cache, producer event.Publisher, logger *slog.Logger) *BrandService {
	if c == nil {
		c = cache.Noop{}
	}
	if producer == nil {
		producer = event.Noop{}
	}
	return &BrandService{repo: repo, cache: c, producer: producer, logger: logger}
}

// CreateBrandInput holds the parameters for creating a brand. Nil optional
// fields take their defaults.
type CreateBrandInput struct {
	Name        string
	URL         string
	Description string
	IsVisible   *bool
	PrimaryHex  *string
}

// CreateBrand validates input, derives the slug from the name and stores
// the brand. Every collided unique field is reported in one error.
func (s *BrandService) CreateBrand(ctx context.Context, input *CreateBrandInput) (*domain.Brand, error) {
	brand, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}

	if err := s.producer.PublishBrandCreated(ctx, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.created event",
			slog.String("brand_id", brand.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "brand created",
		slog.String("brand_id", brand.ID),
		slog.String("slug", brand.Slug),
	)
	return brand, nil
}

// ValidateBrand runs every check CreateBrand runs without storing anything.
func (s *BrandService) ValidateBrand(ctx context.Context, input *CreateBrandInput) error {
	_, err := s.prepare(ctx, input)
	return err
}

func (s *BrandService) prepare(ctx context.Context, input *CreateBrandInput) (*domain.Brand, error) {
	at := now()
	brand := &domain.Brand{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		URL:         strings.TrimSpace(input.URL),
		Description: input.Description,
		IsVisible:   true,
		PrimaryHex:  domain.DefaultPrimaryHex,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if input.IsVisible != nil {
		brand.IsVisible = *input.IsVisible
	}
	if input.PrimaryHex != nil {
		brand.PrimaryHex = *input.PrimaryHex
	}
	brand.Slug = slug.Generate(brand.Name)

	slugErr := domain.ValidateSlug(brand.Name, brand.Slug)
	if err := validate(brand, slugErr); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, brand, ""); err != nil {
		return nil, err
	}
	return brand, nil
}

// GetBrand retrieves a brand by id. Soft-deleted brands still resolve.
func (s *BrandService) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	if !isID(id) {
		return nil, apperrors.NotFound("brand", id)
	}
	brand, err := cached(ctx, s.cache, cache.BrandKey(id), func() (*domain.Brand, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get brand by id: %w", err)
	}
	return brand, nil
}

// ListBrands returns a page of brands and the total number of matches.
func (s *BrandService) ListBrands(ctx context.Context, filter repository.BrandFilter) ([]domain.Brand, int, error) {
	brands, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	return brands, total, nil
}

// UpdateBrand applies patch to a brand. A slug in the patch is ignored.
func (s *BrandService) UpdateBrand(ctx context.Context, id string, patch domain.BrandPatch) (*domain.Brand, error) {
	if !isID(id) {
		return nil, apperrors.NotFound("brand", id)
	}
	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get brand by id: %w", err)
	}

	if patch.Apply(brand, now()) {
		s.logger.DebugContext(ctx, "brand slug change ignored",
			slog.String("brand_id", id),
			slog.String("slug", brand.Slug),
		)
	}
	if err := validate(brand); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, brand, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, brand); err != nil {
		return nil, fmt.Errorf("update brand: %w", err)
	}
	s.cache.Delete(ctx, cache.BrandKey(id))

	if err := s.producer.PublishBrandUpdated(ctx, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.updated event",
			slog.String("brand_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "brand updated", slog.String("brand_id", id))
	return brand, nil
}

// SoftDeleteBrand marks a brand deleted. Deleting it again is a no-op.
func (s *BrandService) SoftDeleteBrand(ctx context.Context, id string) error {
	if !isID(id) {
		return apperrors.NotFound("brand", id)
	}
	if err := s.repo.SoftDelete(ctx, id, now()); err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	s.cache.Delete(ctx, cache.BrandKey(id))

	if err := s.producer.PublishBrandDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.deleted event",
			slog.String("brand_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "brand deleted", slog.String("brand_id", id))
	return nil
}

// SoftDeleteBrands deletes every brand in ids. Unknown ids are collected in
// the result; any other failure stops the batch.
func (s *BrandService) SoftDeleteBrands(ctx context.Context, ids []string) (*BulkResult, error) {
	res := newBulkResult()
	for _, id := range ids {
		err := s.SoftDeleteBrand(ctx, id)
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

func (s *BrandService) checkUnique(ctx context.Context, brand *domain.Brand, excludeID string) error {
	taken, err := s.repo.Conflicts(ctx, brand, excludeID)
	if err != nil {
		return fmt.Errorf("check brand uniqueness: %w", err)
	}
	if len(taken) > 0 {
		return apperrors.DuplicateFields("brand", taken...)
	}
	return nil
}
