package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOverflow     = "22003"
	codeStringTooLong       = "22001"
)

// constraintFields maps constraint names from the migrations to the domain
// field they guard.
var constraintFields = map[string]string{
	"brands_name_key":                "name",
	"brands_slug_key":                "slug",
	"brands_url_key":                 "url",
	"brands_primary_hex_check":       "primary_hex",
	"brands_slug_frozen":             "slug",
	"products_name_key":              "name",
	"products_slug_key":              "slug",
	"products_sku_key":               "sku",
	"products_brand_id_fkey":         "brand_id",
	"products_price_check":           "price",
	"products_quantity_check":        "quantity",
	"products_type_check":            "type",
	"products_slug_frozen":           "slug",
	"order_products_product_id_fkey": "product_ids",
	"orders_status_check":            "status",
}

// checkBounds describes the bound a check constraint enforces.
var checkBounds = map[string]string{
	"price":       "must not be negative",
	"quantity":    "between 0 and 100",
	"primary_hex": "a colour like #1a2b3c",
	"type":        "one of downloadable, deliverable",
	"status":      "a known order status",
	"slug":        "frozen after creation",
}

// mapError converts a driver error into the matching AppError. Constraint
// violations become field-attributed validation errors; anything else is a
// persistence failure wrapping the cause.
func mapError(op, resource string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Persistence(op, err)
	}

	field := constraintFields[pgErr.ConstraintName]
	switch pgErr.Code {
	case codeUniqueViolation:
		if field == "" {
			field = "id"
		}
		return apperrors.DuplicateFields(resource, field)
	case codeForeignKeyViolation:
		if field == "" {
			return apperrors.Persistence(op, err)
		}
		return apperrors.ForeignKey(field, "")
	case codeCheckViolation:
		if field == "" {
			return apperrors.Persistence(op, err)
		}
		return apperrors.OutOfRange(field, checkBounds[field])
	case codeNumericOverflow:
		return apperrors.OutOfRange("price", "at most 6 integer digits")
	case codeStringTooLong:
		// Postgres leaves the column unset here. The bounded text columns
		// are name, slug and sku, and a slug's length follows its name.
		field = pgErr.ColumnName
		if field == "" || field == "slug" {
			field = "name"
		}
		return apperrors.OutOfRange(field, "at most 255 characters")
	}
	return apperrors.Persistence(op, err)
}
