package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront-admin/internal/cache"
	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/repository/memory"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

func TestCreateBrand_DerivesSlugAndDefaults(t *testing.T) {
	f := newFixture(t)

	b, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{
		Name: "  Acme Corp ",
		URL:  "https://acme.example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Acme Corp", b.Name)
	assert.Equal(t, "acme-corp", b.Slug)
	assert.True(t, b.IsVisible)
	assert.Equal(t, domain.DefaultPrimaryHex, b.PrimaryHex)
	assert.Equal(t, []string{"brand.created"}, f.events.published())
}

func TestCreateBrand_DuplicateName(t *testing.T) {
	f := newFixture(t)
	f.brand(t, "Acme Corp")

	_, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{
		Name: "Acme Corp",
		URL:  "https://other.example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateField)
	assert.Equal(t, "name", apperrors.FieldOf(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "slug")
	assert.NotContains(t, appErr.Fields, "url")
}

func TestCreateBrand_ReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)

	_, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{
		Name:       "",
		URL:        "not a url",
		PrimaryHex: strPtr("red"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "url")
	assert.Contains(t, appErr.Fields, "primary_hex")
	assert.Empty(t, f.events.published())
}

func TestCreateBrand_NameWithoutLettersOrDigits(t *testing.T) {
	f := newFixture(t)

	_, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{Name: "!!!", URL: "https://x.example.com"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	assert.Equal(t, "name", apperrors.FieldOf(err))
}

func TestCreateBrand_FoldedSlugTooLong(t *testing.T) {
	f := newFixture(t)

	// 200 runes fit the name column but fold into a 400 character slug.
	_, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{
		Name: strings.Repeat("ß", 200),
		URL:  "https://strasse.example.com",
	})

	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
	assert.Equal(t, "name", apperrors.FieldOf(err))
	assert.Empty(t, f.events.published())
}

func TestCreateBrand_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	b, err := f.brands.CreateBrand(context.Background(), &CreateBrandInput{Name: "Acme", URL: "https://acme.example.com"})
	require.NoError(t, err)

	stored, err := f.brands.GetBrand(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, stored.ID)
}

func TestValidateBrand_StoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.brands.ValidateBrand(ctx, &CreateBrandInput{Name: "Acme", URL: "https://acme.example.com"}))

	_, total, err := f.brands.ListBrands(ctx, repository.BrandFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpdateBrand_RenameKeepsSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.brand(t, "Acme Corp")

	updated, err := f.brands.UpdateBrand(ctx, b.ID, domain.BrandPatch{
		Name: strPtr("Acme Corporation"),
		Slug: strPtr("acme-corporation"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", updated.Name)
	assert.Equal(t, "acme-corp", updated.Slug)

	stored, err := f.brands.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", stored.Slug)
}

func TestUpdateBrand_UniquenessExcludesItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.brand(t, "Acme")
	globex := f.brand(t, "Globex")

	_, err := f.brands.UpdateBrand(ctx, acme.ID, domain.BrandPatch{Name: strPtr("Acme"), IsVisible: boolPtr(false)})
	require.NoError(t, err)

	_, err = f.brands.UpdateBrand(ctx, acme.ID, domain.BrandPatch{URL: &globex.URL})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateField)
	assert.Equal(t, "url", apperrors.FieldOf(err))
}

func TestUpdateBrand_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.brands.UpdateBrand(context.Background(), "9b2f8a3e-59d6-4c61-9d4b-0d7f1f7c0c11", domain.BrandPatch{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.brands.UpdateBrand(context.Background(), "not-a-uuid", domain.BrandPatch{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSoftDeleteBrand_IdempotentAndStillResolvable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.brand(t, "Acme")

	require.NoError(t, f.brands.SoftDeleteBrand(ctx, b.ID))
	require.NoError(t, f.brands.SoftDeleteBrand(ctx, b.ID))

	got, err := f.brands.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	brands, total, err := f.brands.ListBrands(ctx, repository.BrandFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, brands)

	_, total, err = f.brands.ListBrands(ctx, repository.BrandFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSoftDeleteBrands_CollectsMissing(t *testing.T) {
	f := newFixture(t)
	a := f.brand(t, "Acme")
	g := f.brand(t, "Globex")
	missing := "0d6f4a3c-7f1e-4a53-9a77-0e4e4b7a9c01"

	res, err := f.brands.SoftDeleteBrands(context.Background(), []string{a.ID, missing, g.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, g.ID}, res.Deleted)
	assert.Equal(t, []string{missing}, res.Missing)
}

func TestGetBrand_ReadThroughCacheInvalidatedOnUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	svc := NewBrandService(store.Brands, cache.NewRedis(client, time.Minute, newTestLogger()), nil, newTestLogger())
	ctx := context.Background()

	b, err := svc.CreateBrand(ctx, &CreateBrandInput{Name: "Acme", URL: "https://acme.example.com"})
	require.NoError(t, err)

	_, err = svc.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.BrandKey(b.ID)))

	_, err = svc.UpdateBrand(ctx, b.ID, domain.BrandPatch{Description: strPtr("Roadrunner supplies")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.BrandKey(b.ID)))

	got, err := svc.GetBrand(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roadrunner supplies", got.Description)
}
