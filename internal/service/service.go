package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront-admin/internal/cache"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

// BulkResult reports the outcome of a bulk soft delete. Unknown ids are
// listed in Missing and do not stop the rest of the batch.
type BulkResult struct {
	Deleted []string `json:"deleted"`
	Missing []string `json:"missing"`
}

func newBulkResult() *BulkResult {
	return &BulkResult{Deleted: []string{}, Missing: []string{}}
}

func now() time.Time {
	return time.Now().UTC()
}

// isID reports whether id can name a stored entity. Ids are UUIDs; anything
// else cannot exist and is reported as not found without a round trip.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// cached reads key from c, falling back to load and populating c on a miss.
func cached[T any](ctx context.Context, c cache.Cache, key string, load func() (*T, error)) (*T, error) {
	var v T
	if c.Get(ctx, key, &v) {
		return &v, nil
	}
	loaded, err := load()
	if err != nil {
		return nil, err
	}
	c.Set(ctx, key, loaded)
	return loaded, nil
}

// validate runs v.Validate and folds its field errors together with extra
// ones, so a caller sees every failing attribute at once.
func validate(v interface{ Validate() error }, extra ...*apperrors.AppError) error {
	all := extra
	if err := v.Validate(); err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			return err
		}
		all = append(all, appErr)
	}
	return apperrors.Merge(all...)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
