package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/pkg/database"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/pagination"
)

// productSelect reads price as text so it round-trips through decimal without
// float conversion, and joins the brand name shown in listings.
const productSelect = `
		SELECT p.id, p.name, p.slug, p.description, p.sku, p.price::text, p.quantity, p.type,
			   p.is_visible, p.is_featured, p.published_at, p.image, p.brand_id, b.name,
			   p.created_at, p.updated_at, p.deleted_at`

const productFrom = `
		FROM products p
		JOIN brands b ON b.id = p.brand_id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (id, name, slug, description, sku, price, quantity, type,
			is_visible, is_featured, published_at, image, brand_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	ctx, end := database.TraceQuery(ctx, "product.Create", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.SKU,
		p.Price.String(),
		p.Quantity,
		string(p.Type),
		p.IsVisible,
		p.IsFeatured,
		p.PublishedAt,
		p.Image,
		p.BrandID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapError("insert product", "product", err)
}

// GetByID retrieves a product by its ID, including soft-deleted products.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := productSelect + productFrom + `
		WHERE p.id = $1`

	ctx, end := database.TraceQuery(ctx, "product.GetByID", query)
	defer func() { end(err) }()

	return r.getOne(ctx, query, id)
}

// GetBySlug retrieves a product by its slug, including soft-deleted products.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (_ *domain.Product, err error) {
	query := productSelect + productFrom + `
		WHERE p.slug = $1`

	ctx, end := database.TraceQuery(ctx, "product.GetBySlug", query)
	defer func() { end(err) }()

	return r.getOne(ctx, query, slug)
}

func (r *ProductRepository) getOne(ctx context.Context, query, key string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", key)
		}
		return nil, mapError("get product", "product", err)
	}
	return p, nil
}

// List returns products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (_ []domain.Product, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if !filter.IncludeDeleted {
		conditions = append(conditions, "p.deleted_at IS NULL")
	}

	if filter.BrandID != nil {
		conditions = append(conditions, fmt.Sprintf("p.brand_id = $%d", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("p.type = $%d", argIndex))
		args = append(args, string(*filter.Type))
		argIndex++
	}

	if filter.IsVisible != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_visible = $%d", argIndex))
		args = append(args, *filter.IsVisible)
		argIndex++
	}

	if filter.IsFeatured != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", argIndex))
		args = append(args, *filter.IsFeatured)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf(`(p.name ILIKE $%d ESCAPE '\' OR p.sku ILIKE $%d ESCAPE '\')`, argIndex, argIndex))
		args = append(args, containsPattern(*filter.Search))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`%s, count(*) OVER() AS total_count %s
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		productSelect, productFrom, whereClause, argIndex, argIndex+1,
	)

	page := pagination.New(filter.Page, filter.PerPage)
	args = append(args, page.PerPage, page.Offset())

	ctx, end := database.TraceQuery(ctx, "product.List", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list products", "product", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)
	for rows.Next() {
		p, err := scanProduct(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate product rows", "product", err)
	}

	return products, totalCount, nil
}

// Update writes the mutable attributes of a product. The slug column is never
// part of the statement.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, sku = $4, price = $5, quantity = $6, type = $7,
			is_visible = $8, is_featured = $9, published_at = $10, image = $11, brand_id = $12,
			updated_at = $13
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "product.Update", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.SKU,
		p.Price.String(),
		p.Quantity,
		string(p.Type),
		p.IsVisible,
		p.IsFeatured,
		p.PublishedAt,
		p.Image,
		p.BrandID,
		p.UpdatedAt,
	)
	if err != nil {
		return mapError("update product", "product", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// SoftDelete stamps deleted_at on a product. An already deleted product is
// left untouched.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string, at time.Time) (err error) {
	query := `UPDATE products SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "product.SoftDelete", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return mapError("soft delete product", "product", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError("check product exists", "product", err)
	}
	if !exists {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// Conflicts reports which of name, slug and sku are already taken by another
// product. Soft-deleted products still hold their values.
func (r *ProductRepository) Conflicts(ctx context.Context, p *domain.Product, excludeID string) (_ []string, err error) {
	query := `
		SELECT
			EXISTS(SELECT 1 FROM products WHERE name = $1 AND id::text <> $4),
			EXISTS(SELECT 1 FROM products WHERE slug = $2 AND id::text <> $4),
			EXISTS(SELECT 1 FROM products WHERE sku = $3 AND id::text <> $4)`

	ctx, end := database.TraceQuery(ctx, "product.Conflicts", query)
	defer func() { end(err) }()

	var nameTaken, slugTaken, skuTaken bool
	if err := r.db.QueryRow(ctx, query, p.Name, p.Slug, p.SKU, excludeID).Scan(&nameTaken, &slugTaken, &skuTaken); err != nil {
		return nil, mapError("check product uniqueness", "product", err)
	}
	return collided([]string{"name", "slug", "sku"}, nameTaken, slugTaken, skuTaken), nil
}

// ActiveIDs returns the ids that reference existing, non-deleted products.
func (r *ProductRepository) ActiveIDs(ctx context.Context, ids []string) (_ []string, err error) {
	query := `SELECT id::text FROM products WHERE id::text = ANY($1) AND deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "product.ActiveIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, mapError("lookup products", "product", err)
	}
	defer rows.Close()

	var active []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		active = append(active, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate product ids", "product", err)
	}
	return active, nil
}

// scanProduct reads one row produced by productSelect. Extra destinations,
// such as a window count, are scanned after the product columns.
func scanProduct(row rowScanner, extra ...any) (*domain.Product, error) {
	var (
		p         domain.Product
		price     string
		typ       string
		brandName *string
	)
	dest := []any{
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.SKU, &price, &p.Quantity, &typ,
		&p.IsVisible, &p.IsFeatured, &p.PublishedAt, &p.Image, &p.BrandID, &brandName,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	p.Type = domain.ProductType(typ)
	if brandName != nil {
		p.BrandName = *brandName
	}
	return &p, nil
}
