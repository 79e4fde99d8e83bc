package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindByOrder finds the invoice generated for an order, if any
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Invoice, error)

	// FindByCustomer finds invoices for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// FindDueBefore finds pending invoices whose due date has passed
	FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]Invoice, error)

	// Save creates an invoice. The orders-to-invoices relation is
	// one-to-one: saving a second invoice for the same order returns
	// shared.ErrDuplicateInvoice.
	Save(ctx context.Context, inv *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
