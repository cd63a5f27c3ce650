package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

var productCols = []string{
	"id", "name", "slug", "description", "sku", "price", "quantity", "type",
	"is_visible", "is_featured", "published_at", "image", "brand_id", "brand_name",
	"created_at", "updated_at", "deleted_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:          "8f14e45f-ceea-467f-a0e6-3b6c3b1a0101",
		Name:        "Widget",
		Slug:        "widget",
		Description: "A fine widget",
		SKU:         "SKU-1",
		Price:       decimal.RequireFromString("10.50"),
		Quantity:    5,
		Type:        domain.ProductTypeDeliverable,
		IsVisible:   true,
		PublishedAt: domain.PublishDate(now),
		Image:       "products/widget.png",
		BrandID:     "8f14e45f-ceea-467f-a0e6-3b6c3b1a0001",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func productRow(p domain.Product) []any {
	return []any{
		p.ID, p.Name, p.Slug, p.Description, p.SKU, "10.50", p.Quantity, string(p.Type),
		p.IsVisible, p.IsFeatured, p.PublishedAt, p.Image, p.BrandID, strPtr("Acme Corp"),
		p.CreatedAt, p.UpdatedAt, p.DeletedAt,
	}
}

func productInsertArgs(p domain.Product) []any {
	return []any{
		p.ID, p.Name, p.Slug, p.Description, p.SKU, p.Price.String(), p.Quantity, string(p.Type),
		p.IsVisible, p.IsFeatured, p.PublishedAt, p.Image, p.BrandID, p.CreatedAt, p.UpdatedAt,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ProductRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(productInsertArgs(p)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_ConstraintViolations(t *testing.T) {
	tests := []struct {
		constraint string
		code       string
		wantKind   error
		wantField  string
	}{
		{"products_sku_key", "23505", apperrors.ErrDuplicateField, "sku"},
		{"products_slug_key", "23505", apperrors.ErrDuplicateField, "slug"},
		{"products_brand_id_fkey", "23503", apperrors.ErrForeignKey, "brand_id"},
		{"products_quantity_check", "23514", apperrors.ErrOutOfRange, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			mock := newMock(t)
			repo := NewProductRepository(mock)
			p := sampleProduct()

			mock.ExpectExec("INSERT INTO products").
				WithArgs(productInsertArgs(p)...).
				WillReturnError(&pgconn.PgError{Code: tt.code, ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &p)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantField, apperrors.FieldOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectQuery("SELECT .+ FROM products p JOIN brands b .+ WHERE p.id").
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.SKU, got.SKU)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, "10.50", got.Price.StringFixed(2))
	assert.Equal(t, domain.ProductTypeDeliverable, got.Type)
	assert.Equal(t, "Acme Corp", got.BrandName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetBySlug_ResolvesDeleted(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()
	deleted := now.Add(time.Hour)
	p.DeletedAt = &deleted

	mock.ExpectQuery("SELECT .+ FROM products p .+ WHERE p.slug").
		WithArgs(p.Slug).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	got, err := repo.GetBySlug(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_DefaultExcludesDeleted(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectQuery("SELECT .+ WHERE p.deleted_at IS NULL ORDER BY p.created_at DESC").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")).AddRow(append(productRow(p), 1)...))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, p.ID, products[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_WithFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	typ := domain.ProductTypeDownloadable

	mock.ExpectQuery("SELECT .+ WHERE p.deleted_at IS NULL AND p.brand_id = .+ AND p.type = .+ AND p.is_featured = .+ AND .+ILIKE").
		WithArgs("brand-1", "downloadable", true, "%wid%", 5, 5).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{
		BrandID:    strPtr("brand-1"),
		Type:       &typ,
		IsFeatured: boolPtr(true),
		Search:     strPtr("wid"),
		Page:       2,
		PerPage:    5,
	})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NeverWritesSlug(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectExec("UPDATE products SET name = .+, description = .+, sku = .+ WHERE id").
		WithArgs(
			p.ID, p.Name, p.Description, p.SKU, p.Price.String(), p.Quantity, string(p.Type),
			p.IsVisible, p.IsFeatured, p.PublishedAt, p.Image, p.BrandID, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SoftDelete_Idempotent(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("UPDATE products SET deleted_at").
		WithArgs("p1", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	assert.NoError(t, repo.SoftDelete(context.Background(), "p1", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Conflicts(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(p.Name, p.Slug, p.SKU, p.ID).
		WillReturnRows(pgxmock.NewRows([]string{"name", "slug", "sku"}).AddRow(false, false, true))

	fields, err := repo.Conflicts(context.Background(), &p, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sku"}, fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ActiveIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	ids := []string{"p1", "p2", "p3"}

	mock.ExpectQuery("SELECT id::text FROM products WHERE .+ deleted_at IS NULL").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("p1").AddRow("p3"))

	active, err := repo.ActiveIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
