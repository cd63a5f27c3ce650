package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// Price and quantity bounds. A price has at most six integer digits and two
// fractional digits, matching the NUMERIC(8,2) column.
var MaxPrice = decimal.RequireFromString("999999.99")

// pricePattern splits a plain decimal literal into sign, integer digits and
// fractional digits. Exponents, a leading plus and bare fractions do not match.
var pricePattern = regexp.MustCompile(`^(-?)([0-9]+)(?:\.([0-9]+))?$`)

const (
	MinQuantity = 0
	MaxQuantity = 100
)

// ParsePrice parses a price literal. The literal itself must have at most six
// integer digits and two fractional digits, so "12.340" and "0001234.00" are
// rejected even though their values would fit.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperrors.RequiredField("price")
	}
	m := pricePattern.FindStringSubmatch(raw)
	if m == nil {
		return decimal.Zero, apperrors.InvalidFormat("price", "a decimal number such as 10.50")
	}
	switch {
	case m[1] == "-":
		return decimal.Zero, apperrors.OutOfRange("price", "must not be negative")
	case len(m[3]) > 2:
		return decimal.Zero, apperrors.OutOfRange("price", "at most 2 decimal places")
	case len(m[2]) > 6:
		return decimal.Zero, apperrors.OutOfRange("price", "at most 6 integer digits")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.InvalidFormat("price", "a decimal number such as 10.50")
	}
	if appErr := ValidatePrice(d); appErr != nil {
		return decimal.Zero, appErr
	}
	return d, nil
}

// ValidatePrice checks that d is non-negative, has no more than two
// fractional digits and no more than six integer digits. Trailing zeros past
// the second decimal place do not count as extra precision.
func ValidatePrice(d decimal.Decimal) *apperrors.AppError {
	switch {
	case d.IsNegative():
		return apperrors.OutOfRange("price", "must not be negative")
	case !d.Equal(d.Truncate(2)):
		return apperrors.OutOfRange("price", "at most 2 decimal places")
	case d.GreaterThan(MaxPrice):
		return apperrors.OutOfRange("price", "at most 6 integer digits")
	}
	return nil
}

// ValidateQuantity checks that q lies in [MinQuantity, MaxQuantity].
func ValidateQuantity(q int) *apperrors.AppError {
	if q < MinQuantity || q > MaxQuantity {
		return apperrors.OutOfRange("quantity", "between 0 and 100")
	}
	return nil
}
