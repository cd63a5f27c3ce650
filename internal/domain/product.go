package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// ProductType distinguishes how a product is fulfilled.
type ProductType string

// Product type constants.
const (
	ProductTypeDownloadable ProductType = "downloadable"
	ProductTypeDeliverable  ProductType = "deliverable"
)

// ValidProductTypes returns the set of valid product types.
func ValidProductTypes() []ProductType {
	return []ProductType{ProductTypeDownloadable, ProductTypeDeliverable}
}

// IsValid checks whether t is a known product type.
func (t ProductType) IsValid() bool {
	for _, v := range ValidProductTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Product represents a product in the catalog.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Type        ProductType     `json:"type"`
	IsVisible   bool            `json:"is_visible"`
	IsFeatured  bool            `json:"is_featured"`
	PublishedAt time.Time       `json:"published_at"`
	Image       string          `json:"image"`
	BrandID     string          `json:"brand_id"`
	BrandName   string          `json:"brand_name,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Validate checks the field-level rules of a product. Brand existence and
// uniqueness need the store and are checked by the service.
func (p *Product) Validate() error {
	var typeErr *apperrors.AppError
	switch {
	case p.Type == "":
		typeErr = apperrors.RequiredField("type")
	case !p.Type.IsValid():
		typeErr = apperrors.InvalidFormat("type", "one of downloadable, deliverable")
	}

	return apperrors.Merge(
		validateName(p.Name),
		validateSKU(p.SKU),
		ValidatePrice(p.Price),
		ValidateQuantity(p.Quantity),
		typeErr,
		requireText("image", p.Image),
		requireText("brand_id", p.BrandID),
	)
}

// ProductPatch holds the mutable attributes of a product. A nil pointer
// leaves the attribute unchanged. Slug is accepted and ignored, see BrandPatch.
type ProductPatch struct {
	Name        *string
	Slug        *string
	Description *string
	SKU         *string
	Price       *decimal.Decimal
	Quantity    *int
	Type        *ProductType
	IsVisible   *bool
	IsFeatured  *bool
	PublishedAt *time.Time
	Image       *string
	BrandID     *string
}

// Apply copies the patch onto p and stamps UpdatedAt. It reports whether the
// caller asked for a slug change that was ignored.
func (pp ProductPatch) Apply(p *Product, at time.Time) (slugIgnored bool) {
	if pp.Name != nil {
		p.Name = strings.TrimSpace(*pp.Name)
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.SKU != nil {
		p.SKU = strings.TrimSpace(*pp.SKU)
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Quantity != nil {
		p.Quantity = *pp.Quantity
	}
	if pp.Type != nil {
		p.Type = *pp.Type
	}
	if pp.IsVisible != nil {
		p.IsVisible = *pp.IsVisible
	}
	if pp.IsFeatured != nil {
		p.IsFeatured = *pp.IsFeatured
	}
	if pp.PublishedAt != nil {
		p.PublishedAt = *pp.PublishedAt
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.BrandID != nil {
		p.BrandID = *pp.BrandID
	}
	p.UpdatedAt = at
	return pp.Slug != nil && *pp.Slug != p.Slug
}

// ProductDetail is a product enriched with its brand and resolved image URL.
type ProductDetail struct {
	Product
	Brand    *Brand `json:"brand,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// PublishDate truncates t to midnight UTC, the granularity of published_at.
func PublishDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateSKU(sku string) *apperrors.AppError {
	if err := requireText("sku", sku); err != nil {
		return err
	}
	if len([]rune(sku)) > MaxNameLength {
		return apperrors.OutOfRange("sku", "at most 255 characters")
	}
	return nil
}

func requireText(field, v string) *apperrors.AppError {
	if strings.TrimSpace(v) == "" {
		return apperrors.RequiredField(field)
	}
	return nil
}
