package domain

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/slug"
)

// DefaultPrimaryHex is the brand colour used when none is supplied.
const DefaultPrimaryHex = "#000000"

// MaxNameLength bounds brand and product names, slugs and SKUs, matching
// their VARCHAR(255) columns.
const MaxNameLength = 255

var hexColourRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Brand represents a product brand.
type Brand struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	IsVisible   bool       `json:"is_visible"`
	PrimaryHex  string     `json:"primary_hex"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the brand has been soft-deleted.
func (b *Brand) IsDeleted() bool {
	return b.DeletedAt != nil
}

// Validate checks the field-level rules of a brand. Uniqueness is checked
// elsewhere because it needs the store.
func (b *Brand) Validate() error {
	return apperrors.Merge(
		validateName(b.Name),
		validateURL("url", b.URL, true),
		validateHex(b.PrimaryHex),
	)
}

// BrandPatch holds the mutable attributes of a brand. A nil pointer leaves the
// attribute unchanged.
//
// Slug is accepted so callers can round-trip a full brand record, but it is
// never applied: a slug is assigned once at creation and frozen thereafter.
type BrandPatch struct {
	Name        *string
	Slug        *string
	URL         *string
	Description *string
	IsVisible   *bool
	PrimaryHex  *string
}

// Apply copies the patch onto b and stamps UpdatedAt. It reports whether the
// caller asked for a slug change that was ignored.
func (p BrandPatch) Apply(b *Brand, at time.Time) (slugIgnored bool) {
	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
	}
	if p.URL != nil {
		b.URL = strings.TrimSpace(*p.URL)
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.IsVisible != nil {
		b.IsVisible = *p.IsVisible
	}
	if p.PrimaryHex != nil {
		b.PrimaryHex = *p.PrimaryHex
	}
	b.UpdatedAt = at
	return p.Slug != nil && *p.Slug != b.Slug
}

func validateName(name string) *apperrors.AppError {
	switch {
	case strings.TrimSpace(name) == "":
		return apperrors.RequiredField("name")
	case len([]rune(name)) > MaxNameLength:
		return apperrors.OutOfRange("name", "at most 255 characters")
	}
	return nil
}

// ValidateSlug checks the slug derived from name. Folding can lengthen a
// name ("ß" becomes "ss"), so a name within MaxNameLength may still derive a
// slug that does not fit. Both failures are reported on name, the field the
// caller controls.
func ValidateSlug(name, s string) *apperrors.AppError {
	switch {
	case name == "":
		return nil
	case !slug.IsValid(s):
		return apperrors.InvalidFormat("name", "a name containing at least one letter or digit")
	case len(s) > MaxNameLength:
		return apperrors.OutOfRange("name", "its slug must be at most 255 characters")
	}
	return nil
}

func validateURL(field, raw string, required bool) *apperrors.AppError {
	if raw == "" {
		if required {
			return apperrors.RequiredField(field)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.InvalidFormat(field, "an absolute http or https URL")
	}
	return nil
}

func validateHex(hex string) *apperrors.AppError {
	if !hexColourRegexp.MatchString(hex) {
		return apperrors.InvalidFormat("primary_hex", "a colour like #1a2b3c")
	}
	return nil
}
