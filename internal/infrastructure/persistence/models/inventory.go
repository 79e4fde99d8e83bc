package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the inventory Item aggregate.
type InventoryItemModel struct {
	AggregateModel
	SKU              string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	ConsumedQuantity decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	MinQuantity      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain inventory Item.
func (m *InventoryItemModel) ToDomain() *inventory.Item {
	return &inventory.Item{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		Quantity:          m.Quantity,
		ConsumedQuantity:  m.ConsumedQuantity,
		MinQuantity:       m.MinQuantity,
		UnitPrice:         m.UnitPrice,
	}
}

// FromDomain populates the persistence model from a domain inventory Item.
func (m *InventoryItemModel) FromDomain(item *inventory.Item) {
	m.FromDomainAggregateRoot(item.BaseAggregateRoot)
	m.SKU = item.SKU
	m.Name = item.Name
	m.Quantity = item.Quantity
	m.ConsumedQuantity = item.ConsumedQuantity
	m.MinQuantity = item.MinQuantity
	m.UnitPrice = item.UnitPrice
}

// InventoryItemModelFromDomain creates a new persistence model from a domain Item.
func InventoryItemModelFromDomain(item *inventory.Item) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(item)
	return m
}

// StockMovementModel is the persistence model for the stock movement audit
// trail. Movements are append-only.
type StockMovementModel struct {
	BaseModel
	ItemID         uuid.UUID              `gorm:"type:uuid;not null;index"`
	SKU            string                 `gorm:"type:varchar(50);not null;index"`
	MovementType   inventory.MovementType `gorm:"type:varchar(20);not null"`
	Quantity       decimal.Decimal        `gorm:"type:decimal(18,3);not null"`
	QuantityBefore decimal.Decimal        `gorm:"type:decimal(18,3);not null"`
	QuantityAfter  decimal.Decimal        `gorm:"type:decimal(18,3);not null"`
	OrderID        *uuid.UUID             `gorm:"type:uuid;index"`
	Reason         string                 `gorm:"type:varchar(500)"`
	OperatorID     *uuid.UUID             `gorm:"type:uuid"`
	MovedAt        time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:     m.BaseModel.ToDomain(),
		ItemID:         m.ItemID,
		SKU:            m.SKU,
		MovementType:   m.MovementType,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		OrderID:        m.OrderID,
		Reason:         m.Reason,
		OperatorID:     m.OperatorID,
		MovedAt:        m.MovedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement.
func StockMovementModelFromDomain(movement *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		ItemID:         movement.ItemID,
		SKU:            movement.SKU,
		MovementType:   movement.MovementType,
		Quantity:       movement.Quantity,
		QuantityBefore: movement.QuantityBefore,
		QuantityAfter:  movement.QuantityAfter,
		OrderID:        movement.OrderID,
		Reason:         movement.Reason,
		OperatorID:     movement.OperatorID,
		MovedAt:        movement.MovedAt,
	}
	m.FromDomainBaseEntity(movement.BaseEntity)
	return m
}
