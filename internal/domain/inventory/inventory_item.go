package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// StockStatus represents the derived availability of an item
type StockStatus string

const (
	StockStatusAvailable  StockStatus = "AVAILABLE"
	StockStatusLow        StockStatus = "LOW"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// InsufficientStockError reports a deduction that cannot be fulfilled.
// It unwraps to shared.ErrInsufficientStock for error-code mapping.
type InsufficientStockError struct {
	SKU       string
	Available decimal.Decimal
	Requested decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %s, requested %s",
		e.SKU, e.Available.String(), e.Requested.String())
}

// Unwrap returns the underlying sentinel error
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// Item represents a stock-keeping unit in the warehouse.
// Quantity is the on-hand stock; ConsumedQuantity accumulates everything
// ever deducted for orders, for reporting.
type Item struct {
	shared.BaseAggregateRoot
	SKU              string
	Name             string
	Quantity         decimal.Decimal
	ConsumedQuantity decimal.Decimal
	MinQuantity      decimal.Decimal // Low-stock warning threshold
	UnitPrice        decimal.Decimal
}

// NewItem creates a new inventory item
func NewItem(sku, name string, quantity, minQuantity decimal.Decimal, unitPrice valueobject.Money) (*Item, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if minQuantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MIN_QUANTITY", "Minimum quantity cannot be negative")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Quantity:          quantity,
		ConsumedQuantity:  decimal.Zero,
		MinQuantity:       minQuantity,
		UnitPrice:         unitPrice.Amount(),
	}, nil
}

// StockStatus derives the availability status from current quantities
func (i *Item) StockStatus() StockStatus {
	if i.Quantity.IsZero() {
		return StockStatusOutOfStock
	}
	if i.Quantity.LessThanOrEqual(i.MinQuantity) {
		return StockStatusLow
	}
	return StockStatusAvailable
}

// CanFulfill returns true if the requested quantity can be deducted
func (i *Item) CanFulfill(requested decimal.Decimal) bool {
	return requested.IsPositive() && i.Quantity.GreaterThanOrEqual(requested)
}

// Deduct removes stock for an order line.
// Returns *InsufficientStockError if on-hand stock does not cover the request.
func (i *Item) Deduct(requested decimal.Decimal) error {
	if requested.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if i.Quantity.LessThan(requested) {
		return &InsufficientStockError{
			SKU:       i.SKU,
			Available: i.Quantity,
			Requested: requested,
		}
	}

	i.Quantity = i.Quantity.Sub(requested)
	i.ConsumedQuantity = i.ConsumedQuantity.Add(requested)
	i.UpdatedAt = time.Now()

	return nil
}

// Restock adds new stock from replenishment
func (i *Item) Restock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	i.Quantity = i.Quantity.Add(quantity)
	i.UpdatedAt = time.Now()

	return nil
}

// UpdateMinQuantity changes the low-stock threshold
func (i *Item) UpdateMinQuantity(minQuantity decimal.Decimal) error {
	if minQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_QUANTITY", "Minimum quantity cannot be negative")
	}

	i.MinQuantity = minQuantity
	i.UpdatedAt = time.Now()

	return nil
}

// UpdateUnitPrice changes the catalog unit price
func (i *Item) UpdateUnitPrice(unitPrice valueobject.Money) error {
	if unitPrice.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	i.UnitPrice = unitPrice.Amount()
	i.UpdatedAt = time.Now()

	return nil
}

// GetUnitPriceMoney returns the unit price as Money
func (i *Item) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyOMR(i.UnitPrice)
}

// DeductionLine is a single SKU deduction requested by an order approval.
// All lines of an order are applied atomically or not at all.
type DeductionLine struct {
	SKU      string
	Quantity decimal.Decimal
}

// ValidateDeductionLines checks a deduction request for well-formedness
func ValidateDeductionLines(lines []DeductionLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Deduction request has no lines")
	}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.SKU == "" {
			return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
		}
		if _, dup := seen[line.SKU]; dup {
			return shared.NewDomainError("DUPLICATE_SKU", "Duplicate SKU in deduction request")
		}
		seen[line.SKU] = struct{}{}
	}
	return nil
}
