package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
)

var orderCols = []string{"id", "status", "created_at", "updated_at", "product_ids"}

func sampleOrder() domain.Order {
	return domain.Order{
		ID:         "8f14e45f-ceea-467f-a0e6-3b6c3b1a0201",
		Status:     domain.OrderStatusPending,
		ProductIDs: []string{"p1", "p2"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// OrderRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestOrderRepository_Create_WritesProductsInTx(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, "pending", o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_products").
		WithArgs(o.ID, "p1", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_products").
		WithArgs(o.ID, "p2", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), &o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_MissingProductRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, "pending", o.CreatedAt, o.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO order_products").
		WithArgs(o.ID, "p1", 0).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "order_products_product_id_fkey"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &o)
	assert.ErrorIs(t, err, apperrors.ErrForeignKey)
	assert.Equal(t, "product_ids", apperrors.FieldOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o := sampleOrder()

	mock.ExpectQuery("SELECT .+ FROM orders o WHERE o.id").
		WithArgs(o.ID).
		WillReturnRows(pgxmock.NewRows(orderCols).AddRow(o.ID, "pending", o.CreatedAt, o.UpdatedAt, o.ProductIDs))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.Equal(t, []string{"p1", "p2"}, got.ProductIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM orders o").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_List_ByStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	o := sampleOrder()
	status := domain.OrderStatusPending

	mock.ExpectQuery("SELECT .+ FROM orders o WHERE o.status = .+ ORDER BY o.created_at DESC").
		WithArgs("pending", 20, 0).
		WillReturnRows(pgxmock.NewRows(append(orderCols, "total_count")).
			AddRow(o.ID, "pending", o.CreatedAt, o.UpdatedAt, o.ProductIDs, 3))

	orders, total, err := repo.List(context.Background(), repository.OrderFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_CommitsWithHistory(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	change := domain.StatusChange{OrderID: "o1", From: domain.OrderStatusPending, To: domain.OrderStatusProcessing, ChangedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status = .+ WHERE id = .+ AND status = ").
		WithArgs("o1", "pending", "processing", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO order_status_history").
		WithArgs("o1", "pending", "processing", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), change))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_LostRace(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	change := domain.StatusChange{OrderID: "o1", From: domain.OrderStatusPending, To: domain.OrderStatusCancelled, ChangedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("o1", "pending", "cancelled", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), change)
	assert.ErrorIs(t, err, repository.ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_HistoryFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	change := domain.StatusChange{OrderID: "o1", From: domain.OrderStatusPending, To: domain.OrderStatusFailed, ChangedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("o1", "pending", "failed", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO order_status_history").
		WithArgs("o1", "pending", "failed", now).
		WillReturnError(&pgconn.PgError{Code: "57P01"})
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), change)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_History(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM order_status_history WHERE order_id").
		WithArgs("o1").
		WillReturnRows(pgxmock.NewRows([]string{"order_id", "from_status", "to_status", "changed_at"}).
			AddRow("o1", "pending", "processing", now).
			AddRow("o1", "processing", "completed", now.Add(1)))

	history, err := repo.History(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.OrderStatusProcessing, history[0].To)
	assert.Equal(t, domain.OrderStatusCompleted, history[1].To)
	assert.NoError(t, mock.ExpectationsWereMet())
}
