package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInvoice(t *testing.T) *Invoice {
	totals, err := ComputeTotals(decimal.NewFromFloat(255.000), false, DefaultVATRatePercent)
	require.NoError(t, err)

	inv, err := NewInvoice("ACME-INV-2026-0001", uuid.New(), uuid.New(), "ACME", totals, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates pending invoice with 30 day term", func(t *testing.T) {
		inv := createTestInvoice(t)

		assert.Equal(t, InvoiceStatusPending, inv.Status)
		assert.Equal(t, "267.750", inv.TotalAmount.StringFixed(3))
		assert.Equal(t, time.Date(2026, 9, 27, 0, 0, 0, 0, time.UTC), inv.DueDate)
		assert.Nil(t, inv.PaidAt)

		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceGenerated, events[0].EventType())
	})

	t.Run("rejects totals that do not add up", func(t *testing.T) {
		broken := Totals{
			Subtotal: decimal.NewFromInt(100),
			Tax:      decimal.NewFromInt(5),
			Total:    decimal.NewFromInt(110),
		}
		_, err := NewInvoice("ACME-INV-2026-0002", uuid.New(), uuid.New(), "ACME", broken, time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		totals, err := ComputeTotals(decimal.NewFromInt(10), true, DefaultVATRatePercent)
		require.NoError(t, err)

		_, err = NewInvoice("", uuid.New(), uuid.New(), "ACME", totals, time.Now())
		assert.Error(t, err)
	})
}

func TestInvoice_MarkPaid(t *testing.T) {
	t.Run("pays pending invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		paidAt := time.Now()

		require.NoError(t, inv.MarkPaid(paidAt))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		require.NotNil(t, inv.PaidAt)
		assert.Equal(t, paidAt, *inv.PaidAt)
	})

	t.Run("pays overdue invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 1)))

		require.NoError(t, inv.MarkPaid(time.Now()))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("double payment rejected", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkPaid(time.Now()))
		assert.Error(t, inv.MarkPaid(time.Now()))
	})

	t.Run("cancelled invoice cannot be paid", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel())
		assert.Error(t, inv.MarkPaid(time.Now()))
	})
}

func TestInvoice_MarkOverdue(t *testing.T) {
	t.Run("flags past due pending invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		now := inv.DueDate.AddDate(0, 0, 1)

		assert.True(t, inv.IsOverdueAt(now))
		require.NoError(t, inv.MarkOverdue(now))
		assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	})

	t.Run("not yet due", func(t *testing.T) {
		inv := createTestInvoice(t)
		now := inv.DueDate.Add(-time.Hour)

		assert.False(t, inv.IsOverdueAt(now))
		assert.Error(t, inv.MarkOverdue(now))
		assert.Equal(t, InvoiceStatusPending, inv.Status)
	})

	t.Run("paid invoice never overdue", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkPaid(time.Now()))

		assert.False(t, inv.IsOverdueAt(inv.DueDate.AddDate(0, 1, 0)))
		assert.Error(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 1, 0)))
	})
}

func TestInvoice_Cancel(t *testing.T) {
	inv := createTestInvoice(t)

	require.NoError(t, inv.Cancel())
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.NotNil(t, inv.CancelledAt)

	assert.Error(t, inv.Cancel())
}
