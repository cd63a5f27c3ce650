package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/pkg/database"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/pagination"
)

// orderSelect aggregates product references in insertion order.
const orderSelect = `
		SELECT o.id, o.status, o.created_at, o.updated_at,
			   COALESCE(ARRAY(SELECT op.product_id::text FROM order_products op
			                  WHERE op.order_id = o.id ORDER BY op.position), '{}')`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order and its product references in a single transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	query := `INSERT INTO orders (id, status, created_at, updated_at) VALUES ($1, $2, $3, $4)`

	ctx, end := database.TraceQuery(ctx, "order.Create", query)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, o.ID, string(o.Status), o.CreatedAt, o.UpdatedAt); err != nil {
			return mapError("insert order", "order", err)
		}
		for i, productID := range o.ProductIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO order_products (order_id, product_id, position) VALUES ($1, $2, $3)`,
				o.ID, productID, i,
			)
			if err != nil {
				return mapError("insert order product", "order", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	query := orderSelect + `
		FROM orders o
		WHERE o.id = $1`

	ctx, end := database.TraceQuery(ctx, "order.GetByID", query)
	defer func() { end(err) }()

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, mapError("get order", "order", err)
	}
	return o, nil
}

// List returns orders, newest first, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (_ []domain.Order, _ int, err error) {
	var (
		args        []any
		argIndex    = 1
		whereClause string
	)

	if filter.Status != nil {
		whereClause = fmt.Sprintf("WHERE o.status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	query := fmt.Sprintf(`%s, count(*) OVER() AS total_count
		FROM orders o
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderSelect, whereClause, argIndex, argIndex+1,
	)

	page := pagination.New(filter.Page, filter.PerPage)
	args = append(args, page.PerPage, page.Offset())

	ctx, end := database.TraceQuery(ctx, "order.List", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list orders", "order", err)
	}
	defer rows.Close()

	var (
		orders     []domain.Order
		totalCount int
	)
	for rows.Next() {
		o, err := scanOrder(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("iterate order rows", "order", err)
	}

	return orders, totalCount, nil
}

// UpdateStatus performs a compare-and-swap on the order status and records
// the change in order_status_history within one transaction.
func (r *OrderRepository) UpdateStatus(ctx context.Context, change domain.StatusChange) (err error) {
	query := `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`

	ctx, end := database.TraceQuery(ctx, "order.UpdateStatus", query)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, change.OrderID, string(change.From), string(change.To), change.ChangedAt)
		if err != nil {
			return mapError("update order status", "order", err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrStatusChanged
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO order_status_history (order_id, from_status, to_status, changed_at) VALUES ($1, $2, $3, $4)`,
			change.OrderID, string(change.From), string(change.To), change.ChangedAt,
		)
		if err != nil {
			return mapError("insert order status history", "order", err)
		}
		return nil
	})
}

// History returns the recorded status changes of an order, oldest first.
func (r *OrderRepository) History(ctx context.Context, orderID string) (_ []domain.StatusChange, err error) {
	query := `
		SELECT order_id::text, from_status, to_status, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`

	ctx, end := database.TraceQuery(ctx, "order.History", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, mapError("list order history", "order", err)
	}
	defer rows.Close()

	history := []domain.StatusChange{}
	for rows.Next() {
		var (
			c        domain.StatusChange
			from, to string
		)
		if err := rows.Scan(&c.OrderID, &from, &to, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan order history row: %w", err)
		}
		c.From = domain.OrderStatus(from)
		c.To = domain.OrderStatus(to)
		history = append(history, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate order history rows", "order", err)
	}
	return history, nil
}

func scanOrder(row rowScanner, extra ...any) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	dest := []any{&o.ID, &status, &o.CreatedAt, &o.UpdatedAt, &o.ProductIDs}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
