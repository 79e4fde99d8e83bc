package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// Repository defines the interface for inventory item persistence
type Repository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindBySKU finds an item by SKU
	FindBySKU(ctx context.Context, sku string) (*Item, error)

	// FindBySKUs finds all items matching the given SKUs
	FindBySKUs(ctx context.Context, skus []string) ([]Item, error)

	// FindBySKUsForUpdate loads items by SKU with row-level locks held
	// for the duration of the surrounding transaction. Used by the
	// all-or-nothing deduction path.
	FindBySKUsForUpdate(ctx context.Context, skus []string) ([]Item, error)

	// FindAll finds items with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, error)

	// FindBelowMinQuantity finds items at or below their low-stock threshold
	FindBelowMinQuantity(ctx context.Context, filter shared.Filter) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, item *Item) error

	// DeductQuantity atomically deducts stock with a conditional update
	// (quantity >= requested guard). Returns the item state after the
	// deduction, or *InsufficientStockError without modifying anything.
	DeductQuantity(ctx context.Context, sku string, quantity decimal.Decimal) (*Item, error)

	// Count counts items matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsBySKU checks if a SKU is already registered
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}

// StockMovementRepository defines the interface for movement audit persistence.
// Movements are append-only.
type StockMovementRepository interface {
	// Save appends a stock movement
	Save(ctx context.Context, movement *StockMovement) error

	// SaveAll appends multiple movements
	SaveAll(ctx context.Context, movements []*StockMovement) error

	// FindByItem returns movements for an item, newest first
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByOrder returns movements caused by an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]StockMovement, error)
}
