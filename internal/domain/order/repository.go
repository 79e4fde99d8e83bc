package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByCustomer finds orders for a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders in a given status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders in a given status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber generates a unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// ApprovalRecordRepository defines the interface for approval record persistence.
// Records are append-only; there is no update or delete.
type ApprovalRecordRepository interface {
	// Save appends an approval record
	Save(ctx context.Context, record *ApprovalRecord) error

	// FindByOrder returns all approval records for an order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ApprovalRecord, error)
}
