package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
)

func newMockInvoiceRepository(t *testing.T) (*GormInvoiceRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormInvoiceRepository(gormDB), mock, mockDB
}

func invoiceRows(id, orderID, customerID uuid.UUID, number string) *sqlmock.Rows {
	issue := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "invoice_number", "order_id", "customer_id", "customer_code",
		"subtotal", "tax_amount", "total_amount", "vat_exempt", "status",
		"issue_date", "due_date", "version",
	}).AddRow(
		id, number, orderID, customerID, "ACME",
		decimal.RequireFromString("255.000"), decimal.RequireFromString("12.750"),
		decimal.RequireFromString("267.750"), false, billing.InvoiceStatusPending,
		issue, issue.AddDate(0, 0, 30), 1,
	)
}

func TestGormInvoiceRepository_FindByOrder(t *testing.T) {
	t.Run("finds the invoice for an order", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()
		orderID := uuid.New()
		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE order_id = \$1`).
			WithArgs(orderID, 1).
			WillReturnRows(invoiceRows(invoiceID, orderID, customerID, "ACME-INV-2026-0001"))

		inv, err := repo.FindByOrder(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, "ACME-INV-2026-0001", inv.InvoiceNumber)
		assert.Equal(t, orderID, inv.OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no invoice exists yet", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE order_id = \$1`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByOrder(context.Background(), orderID)

		assert.Nil(t, inv)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	t.Run("maps unique violation on order_id to ErrDuplicateInvoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := &billing.Invoice{
			InvoiceNumber: "ACME-INV-2026-0001",
			OrderID:       uuid.New(),
			CustomerID:    uuid.New(),
			CustomerCode:  "ACME",
			Status:        billing.InvoiceStatusPending,
		}
		inv.ID = uuid.New()
		inv.Version = 1

		mock.ExpectExec(`INSERT INTO "invoices"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err := repo.Save(context.Background(), inv)

		assert.ErrorIs(t, err, shared.ErrDuplicateInvoice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindDueBefore(t *testing.T) {
	t.Run("returns pending invoices past their due date", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()
		orderID := uuid.New()
		customerID := uuid.New()
		cutoff := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE status = \$1 AND due_date < \$2 ORDER BY due_date ASC LIMIT \$3`).
			WithArgs(billing.InvoiceStatusPending, cutoff, 100).
			WillReturnRows(invoiceRows(invoiceID, orderID, customerID, "ACME-INV-2026-0001"))

		invoices, err := repo.FindDueBefore(context.Background(), cutoff, 100)

		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, billing.InvoiceStatusPending, invoices[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("returns concurrency conflict when version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := &billing.Invoice{
			InvoiceNumber: "ACME-INV-2026-0001",
			OrderID:       uuid.New(),
			Status:        billing.InvoiceStatusPaid,
		}
		inv.ID = uuid.New()
		inv.Version = 2

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), inv)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 2, inv.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSequenceAllocator_Next(t *testing.T) {
	t.Run("returns allocated sequence value", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		allocator := NewGormSequenceAllocator(gormDB)

		customerID := uuid.New()
		mock.ExpectQuery(`INSERT INTO invoice_sequences`).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(7))

		next, err := allocator.Next(context.Background(), customerID, 2026)

		require.NoError(t, err)
		assert.Equal(t, int64(7), next)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps serialization failures to ErrSequenceConflict", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		allocator := NewGormSequenceAllocator(gormDB)

		customerID := uuid.New()
		mock.ExpectQuery(`INSERT INTO invoice_sequences`).
			WillReturnError(errDeadlock{})

		next, err := allocator.Next(context.Background(), customerID, 2026)

		assert.Zero(t, next)
		assert.ErrorIs(t, err, shared.ErrSequenceConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

type errDeadlock struct{}

func (errDeadlock) Error() string { return "ERROR: deadlock detected (SQLSTATE 40P01)" }
