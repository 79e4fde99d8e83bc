package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
)

func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds order with its items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		customerID := uuid.New()
		itemID := uuid.New()

		orderRows := sqlmock.NewRows([]string{
			"id", "order_number", "customer_id", "customer_name", "customer_code",
			"vat_exempt", "total_amount", "status", "version",
		}).AddRow(
			orderID, "ORD-2026-00001", customerID, "Acme Construction", "ACME",
			false, decimal.RequireFromString("255.000"), order.StatusPendingApproval, 1,
		)
		itemRows := sqlmock.NewRows([]string{
			"id", "order_id", "sku", "name", "quantity", "unit_price", "line_total",
		}).AddRow(
			itemID, orderID, "CEM-50", "Cement Bag 50kg",
			decimal.NewFromInt(3), decimal.RequireFromString("85.000"), decimal.RequireFromString("255.000"),
		)

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
			WithArgs(orderID, 1).
			WillReturnRows(orderRows)
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		o, err := repo.FindByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-00001", o.OrderNumber)
		assert.Equal(t, order.StatusPendingApproval, o.Status)
		require.Len(t, o.Items, 1)
		assert.Equal(t, "CEM-50", o.Items[0].SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.Nil(t, o)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("returns concurrency conflict when version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := &order.Order{
			OrderNumber:  "ORD-2026-00001",
			CustomerID:   uuid.New(),
			CustomerName: "Acme Construction",
			CustomerCode: "ACME",
			Status:       order.StatusApproved,
		}
		o.ID = uuid.New()
		o.Version = 2

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 2, o.Version, "version restored after failed save")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("writes status and items in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		o := &order.Order{
			OrderNumber:  "ORD-2026-00001",
			CustomerID:   uuid.New(),
			CustomerName: "Acme Construction",
			CustomerCode: "ACME",
			Status:       order.StatusApproved,
		}
		o.ID = uuid.New()
		o.Version = 1

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "order_items" WHERE order_id = \$1`).
			WithArgs(o.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), o)

		require.NoError(t, err)
		assert.Equal(t, 2, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	t.Run("continues from the highest existing number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_number LIKE \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}).
				AddRow(uuid.New(), "ORD-2026-00041"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE order_number = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-00042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("starts at 00001 when no orders exist for the year", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_number LIKE \$1`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE order_number = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background())

		require.NoError(t, err)
		assert.Regexp(t, `^ORD-\d{4}-00001$`, number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormApprovalRecordRepository_FindByOrder(t *testing.T) {
	t.Run("returns records oldest first", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormApprovalRecordRepository(gormDB)

		orderID := uuid.New()
		rows := sqlmock.NewRows([]string{
			"id", "order_id", "decision", "system", "order_total",
		}).AddRow(
			uuid.New(), orderID, order.ApprovalDecisionApproved, true, decimal.RequireFromString("255.000"),
		)

		mock.ExpectQuery(`SELECT \* FROM "approval_records" WHERE order_id = \$1 ORDER BY created_at ASC`).
			WithArgs(orderID).
			WillReturnRows(rows)

		records, err := repo.FindByOrder(context.Background(), orderID)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, order.ApprovalDecisionApproved, records[0].Decision)
		assert.True(t, records[0].System)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
