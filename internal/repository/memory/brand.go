package memory

import (
	"context"
	"sort"
	"time"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

type brandRecord struct {
	brand domain.Brand
}

// BrandRepository implements repository.BrandRepository in memory.
type BrandRepository struct {
	cat *catalog
}

// Create inserts a brand, enforcing name, slug and url uniqueness under the
// store lock.
func (r *BrandRepository) Create(_ context.Context, b *domain.Brand) error {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()

	if _, ok := r.cat.brands[b.ID]; ok {
		return apperrors.DuplicateFields("brand", "id")
	}
	if taken := r.conflicts(b, ""); len(taken) > 0 {
		return apperrors.DuplicateFields("brand", taken...)
	}
	r.cat.brands[b.ID] = &brandRecord{brand: *b}
	return nil
}

// GetByID returns a copy of the brand, soft-deleted or not.
func (r *BrandRepository) GetByID(_ context.Context, id string) (*domain.Brand, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()

	rec, ok := r.cat.brands[id]
	if !ok {
		return nil, apperrors.NotFound("brand", id)
	}
	b := rec.brand
	return &b, nil
}

// List returns brands matching the filter ordered by name.
func (r *BrandRepository) List(_ context.Context, filter repository.BrandFilter) ([]domain.Brand, int, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()

	var matched []domain.Brand
	for _, rec := range r.cat.brands {
		b := rec.brand
		if !filter.IncludeDeleted && b.IsDeleted() {
			continue
		}
		if filter.IsVisible != nil && b.IsVisible != *filter.IsVisible {
			continue
		}
		if filter.Search != nil && !containsFold(b.Name, *filter.Search) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	start, end := window(len(matched), filter.Page, filter.PerPage)
	return matched[start:end], len(matched), nil
}

// Update replaces the mutable attributes of a brand, keeping the stored slug.
func (r *BrandRepository) Update(_ context.Context, b *domain.Brand) error {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()

	rec, ok := r.cat.brands[b.ID]
	if !ok {
		return apperrors.NotFound("brand", b.ID)
	}
	next := *b
	next.Slug = rec.brand.Slug
	next.CreatedAt = rec.brand.CreatedAt
	next.DeletedAt = rec.brand.DeletedAt
	if taken := r.conflicts(&next, b.ID); len(taken) > 0 {
		return apperrors.DuplicateFields("brand", taken...)
	}
	rec.brand = next
	return nil
}

// SoftDelete stamps DeletedAt once; later calls leave it unchanged.
func (r *BrandRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.cat.mu.Lock()
	defer r.cat.mu.Unlock()

	rec, ok := r.cat.brands[id]
	if !ok {
		return apperrors.NotFound("brand", id)
	}
	if rec.brand.DeletedAt == nil {
		rec.brand.DeletedAt = &at
		rec.brand.UpdatedAt = at
	}
	return nil
}

// Conflicts reports which of name, slug and url are held by another brand.
func (r *BrandRepository) Conflicts(_ context.Context, b *domain.Brand, excludeID string) ([]string, error) {
	r.cat.mu.RLock()
	defer r.cat.mu.RUnlock()
	return r.conflicts(b, excludeID), nil
}

// conflicts must be called with the catalog lock held.
func (r *BrandRepository) conflicts(b *domain.Brand, excludeID string) []string {
	var name, slug, url bool
	for id, rec := range r.cat.brands {
		if id == excludeID {
			continue
		}
		name = name || rec.brand.Name == b.Name
		slug = slug || rec.brand.Slug == b.Slug
		url = url || rec.brand.URL == b.URL
	}
	var out []string
	if name {
		out = append(out, "name")
	}
	if slug {
		out = append(out, "slug")
	}
	if url {
		out = append(out, "url")
	}
	return out
}
