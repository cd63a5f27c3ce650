package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/pkg/database"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/pagination"
)

const brandColumns = `id, name, slug, url, description, is_visible, primary_hex, created_at, updated_at, deleted_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// BrandRepository implements repository.BrandRepository using PostgreSQL.
type BrandRepository struct {
	db database.DBTX
}

// NewBrandRepository creates a new PostgreSQL-backed brand repository.
func NewBrandRepository(db database.DBTX) *BrandRepository {
	return &BrandRepository{db: db}
}

// Create inserts a new brand into the database.
func (r *BrandRepository) Create(ctx context.Context, b *domain.Brand) (err error) {
	query := `
		INSERT INTO brands (id, name, slug, url, description, is_visible, primary_hex, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ctx, end := database.TraceQuery(ctx, "brand.Create", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		b.ID,
		b.Name,
		b.Slug,
		b.URL,
		b.Description,
		b.IsVisible,
		b.PrimaryHex,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return mapError("insert brand", "brand", err)
}

// GetByID retrieves a brand by its ID, including soft-deleted brands.
func (r *BrandRepository) GetByID(ctx context.Context, id string) (_ *domain.Brand, err error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "brand.GetByID", query)
	defer func() { end(err) }()

	b, err := scanBrand(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("brand", id)
		}
		return nil, mapError("get brand", "brand", err)
	}
	return b, nil
}

// List returns brands matching the filter ordered by name.
func (r *BrandRepository) List(ctx context.Context, filter repository.BrandFilter) (_ []domain.Brand, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}

	if filter.IsVisible != nil {
		conditions = append(conditions, fmt.Sprintf("is_visible = $%d", argIndex))
		args = append(args, *filter.IsVisible)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argIndex))
		args = append(args, containsPattern(*filter.Search))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM brands
		%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		brandColumns, whereClause, argIndex, argIndex+1,
	)

	page := pagination.New(filter.Page, filter.PerPage)
	args = append(args, page.PerPage, page.Offset())

	ctx, end := database.TraceQuery(ctx, "brand.List", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list brands", "brand", err)
	}
	defer rows.Close()

	var (
		brands     []domain.Brand
		totalCount int
	)
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Slug, &b.URL, &b.Description, &b.IsVisible,
			&b.PrimaryHex, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan brand row: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate brand rows", "brand", err)
	}

	return brands, totalCount, nil
}

// Update writes the mutable attributes of a brand. The slug column is never
// part of the statement.
func (r *BrandRepository) Update(ctx context.Context, b *domain.Brand) (err error) {
	query := `
		UPDATE brands
		SET name = $2, url = $3, description = $4, is_visible = $5, primary_hex = $6, updated_at = $7
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "brand.Update", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query,
		b.ID,
		b.Name,
		b.URL,
		b.Description,
		b.IsVisible,
		b.PrimaryHex,
		b.UpdatedAt,
	)
	if err != nil {
		return mapError("update brand", "brand", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("brand", b.ID)
	}
	return nil
}

// SoftDelete stamps deleted_at on a brand. An already deleted brand is left
// untouched.
func (r *BrandRepository) SoftDelete(ctx context.Context, id string, at time.Time) (err error) {
	query := `UPDATE brands SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "brand.SoftDelete", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return mapError("soft delete brand", "brand", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.ensureExists(ctx, id)
}

// Conflicts reports which of name, slug and url are already taken by another
// brand. Soft-deleted brands still hold their values.
func (r *BrandRepository) Conflicts(ctx context.Context, b *domain.Brand, excludeID string) (_ []string, err error) {
	query := `
		SELECT
			EXISTS(SELECT 1 FROM brands WHERE name = $1 AND id::text <> $4),
			EXISTS(SELECT 1 FROM brands WHERE slug = $2 AND id::text <> $4),
			EXISTS(SELECT 1 FROM brands WHERE url = $3 AND id::text <> $4)`

	ctx, end := database.TraceQuery(ctx, "brand.Conflicts", query)
	defer func() { end(err) }()

	var nameTaken, slugTaken, urlTaken bool
	if err := r.db.QueryRow(ctx, query, b.Name, b.Slug, b.URL, excludeID).Scan(&nameTaken, &slugTaken, &urlTaken); err != nil {
		return nil, mapError("check brand uniqueness", "brand", err)
	}
	return collided([]string{"name", "slug", "url"}, nameTaken, slugTaken, urlTaken), nil
}

func (r *BrandRepository) ensureExists(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM brands WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError("check brand exists", "brand", err)
	}
	if !exists {
		return apperrors.NotFound("brand", id)
	}
	return nil
}

func scanBrand(row rowScanner) (*domain.Brand, error) {
	var b domain.Brand
	if err := row.Scan(
		&b.ID, &b.Name, &b.Slug, &b.URL, &b.Description, &b.IsVisible,
		&b.PrimaryHex, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// collided returns the names whose matching flag is set, preserving order.
func collided(names []string, taken ...bool) []string {
	var out []string
	for i, t := range taken {
		if t {
			out = append(out, names[i])
		}
	}
	return out
}
