package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypeDeduction is stock consumed by an approved order
	MovementTypeDeduction MovementType = "DEDUCTION"
	// MovementTypeRestock is replenishment stock coming in
	MovementTypeRestock MovementType = "RESTOCK"
	// MovementTypeAdjustment is a manual correction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeDeduction, MovementTypeRestock, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of a quantity change.
// Corrections are made with new movements, never by editing old ones.
type StockMovement struct {
	shared.BaseEntity
	ItemID         uuid.UUID
	SKU            string
	MovementType   MovementType
	Quantity       decimal.Decimal // Always positive, direction given by type
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	OrderID        *uuid.UUID // Originating order, when order-driven
	Reason         string
	OperatorID     *uuid.UUID // Nil for system-driven movements
	MovedAt        time.Time
}

// NewStockMovement creates a new stock movement record
func NewStockMovement(itemID uuid.UUID, sku string, movementType MovementType, quantity, before, after decimal.Decimal) (*StockMovement, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		ItemID:         itemID,
		SKU:            sku,
		MovementType:   movementType,
		Quantity:       quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		MovedAt:        time.Now(),
	}, nil
}

// WithOrderID links the movement to its originating order
func (m *StockMovement) WithOrderID(orderID uuid.UUID) *StockMovement {
	m.OrderID = &orderID
	return m
}

// WithReason sets the reason for the movement
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// WithOperatorID records the user who triggered the movement
func (m *StockMovement) WithOperatorID(operatorID uuid.UUID) *StockMovement {
	m.OperatorID = &operatorID
	return m
}

// SignedQuantity returns the quantity with direction applied
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	switch m.MovementType {
	case MovementTypeDeduction:
		return m.Quantity.Neg()
	case MovementTypeAdjustment:
		return m.QuantityAfter.Sub(m.QuantityBefore)
	}
	return m.Quantity
}
