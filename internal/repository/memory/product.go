package memory

import (
	"context"
	"sort"
	"time"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

type productRecord struct {
	product domain.Product
}

// ProductRepository implements repository.ProductRepository in memory.
type ProductRepository struct {
	cat *catalog
}

// Create inserts a product. Uniqueness and the brand reference are checked
// under the store lock, so concurrent creates with the same SKU cannot both
// succeed.
func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()

	if _, ok := r.cat.products[p.ID]; ok {
		return apperrors.DuplicateFields("product", "id")
	}
	if taken := r.conflicts(p, ""); len(taken) > 0 {
		return apperrors.DuplicateFields("product", taken...)
	}
	if _, ok := r.cat.brands[p.BrandID]; !ok {
		return apperrors.ForeignKey("brand_id", p.BrandID)
	}
	r.cat.products[p.ID] = &productRecord{product: *p}
	return nil
}

// GetByID returns a copy of the product, soft-deleted or not.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()

	rec, ok := r.cat.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return r.withBrandName(rec.product), nil
}

// GetBySlug returns a copy of the product with the given slug.
func (r *ProductRepository) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()

	for _, rec := range r.cat.products {
		if rec.product.Slug == slug {
			return r.withBrandName(rec.product), nil
		}
	}
	return nil, apperrors.NotFound("product", slug)
}

// List returns products matching the filter, newest first.
func (r *ProductRepository) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()

	var matched []domain.Product
	for _, rec := range r.cat.products {
		p := rec.product
		switch {
		case !filter.IncludeDeleted && p.IsDeleted():
			continue
		case filter.BrandID != nil && p.BrandID != *filter.BrandID:
			continue
		case filter.Type != nil && p.Type != *filter.Type:
			continue
		case filter.IsVisible != nil && p.IsVisible != *filter.IsVisible:
			continue
		case filter.IsFeatured != nil && p.IsFeatured != *filter.IsFeatured:
			continue
		case filter.Search != nil && !containsFold(p.Name, *filter.Search) && !containsFold(p.SKU, *filter.Search):
			continue
		}
		matched = append(matched, *r.withBrandName(p))
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

// Update replaces the mutable attributes of a product, keeping the stored
// slug.
func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()

	rec, ok := r.cat.products[p.ID]
	if !ok {
		return apperrors.NotFound("product", p.ID)
	}
	next := *p
	next.Slug = rec.product.Slug
	next.CreatedAt = rec.product.CreatedAt
	next.DeletedAt = rec.product.DeletedAt
	next.BrandName = ""
	if taken := r.conflicts(&next, p.ID); len(taken) > 0 {
		return apperrors.DuplicateFields("product", taken...)
	}
	if _, ok := r.cat.brands[next.BrandID]; !ok {
		return apperrors.ForeignKey("brand_id", next.BrandID)
	}
	rec.product = next
	return nil
}

// SoftDelete stamps DeletedAt once; later calls leave it unchanged.
func (r *ProductRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()

	rec, ok := r.cat.products[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}
	if rec.product.DeletedAt == nil {
		rec.product.DeletedAt = &at
		rec.product.UpdatedAt = at
	}
	return nil
}

// Conflicts reports which of name, slug and sku are held by another product.
func (r *ProductRepository) Conflicts(_ context.Context, p *domain.Product, excludeID string) ([]string, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()
	return r.conflicts(p, excludeID), nil
}

// ActiveIDs returns the ids that name existing, non-deleted products, in the
// order given.
func (r *ProductRepository) ActiveIDs(_ context.Context, ids []string) ([]string, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()

	var active []string
	for _, id := range ids {
		if rec, ok := r.cat.products[id]; ok && !rec.product.IsDeleted() {
			active = append(active, id)
		}
	}
	return active, nil
}

// exists reports whether id names a stored product, deleted or not. It
// mirrors the order_products foreign key.
func (r *ProductRepository) exists(id string) bool {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()
	_, ok := r.cat.products[id]
	return ok
}

func (r *ProductRepository) conflicts(p *domain.Product, excludeID string) []string {
	var name, slug, sku bool
	for id, rec := range r.cat.products {
		if id == excludeID {
			continue
		}
		name = name || rec.product.Name == p.Name
		slug = slug || rec.product.Slug == p.Slug
		sku = sku || rec.product.SKU == p.SKU
	}
	var out []string
	if name {
		out = append(out, "name")
	}
	if slug {
		out = append(out, "slug")
	}
	if sku {
		out = append(out, "sku")
	}
	return out
}

func (r *ProductRepository) withBrandName(p domain.Product) *domain.Product {
	if rec, ok := r.cat.brands[p.BrandID]; ok {
		p.BrandName = rec.brand.Name
	}
	return &p
}
