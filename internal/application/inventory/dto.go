package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/inventory"
)

// CreateItemRequest registers a new stock-keeping unit
type CreateItemRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// RestockRequest brings replenishment stock in
type RestockRequest struct {
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reason     string          `json:"reason"`
	OperatorID *uuid.UUID      `json:"operator_id"`
}

// ItemListFilter is the filter for listing inventory items
type ItemListFilter struct {
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
	Search       string
	BelowMinOnly bool
}

// ItemResponse is the full inventory item representation
type ItemResponse struct {
	ID               uuid.UUID             `json:"id"`
	SKU              string                `json:"sku"`
	Name             string                `json:"name"`
	Quantity         decimal.Decimal       `json:"quantity"`
	ConsumedQuantity decimal.Decimal       `json:"consumed_quantity"`
	MinQuantity      decimal.Decimal       `json:"min_quantity"`
	UnitPrice        decimal.Decimal       `json:"unit_price"`
	StockStatus      inventory.StockStatus `json:"stock_status"`
	Version          int                   `json:"version"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// MovementResponse is the representation of a stock movement audit record
type MovementResponse struct {
	ID             uuid.UUID              `json:"id"`
	ItemID         uuid.UUID              `json:"item_id"`
	SKU            string                 `json:"sku"`
	MovementType   inventory.MovementType `json:"movement_type"`
	Quantity       decimal.Decimal        `json:"quantity"`
	QuantityBefore decimal.Decimal        `json:"quantity_before"`
	QuantityAfter  decimal.Decimal        `json:"quantity_after"`
	OrderID        *uuid.UUID             `json:"order_id,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
	OperatorID     *uuid.UUID             `json:"operator_id,omitempty"`
	MovedAt        time.Time              `json:"moved_at"`
}

// ToItemResponse converts a domain item to its response representation
func ToItemResponse(item *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:               item.ID,
		SKU:              item.SKU,
		Name:             item.Name,
		Quantity:         item.Quantity,
		ConsumedQuantity: item.ConsumedQuantity,
		MinQuantity:      item.MinQuantity,
		UnitPrice:        item.UnitPrice,
		StockStatus:      item.StockStatus(),
		Version:          item.Version,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

// ToItemResponses converts domain items to response representations
func ToItemResponses(items []inventory.Item) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}

// ToMovementResponses converts stock movements to response representations
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = MovementResponse{
			ID:             m.ID,
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
	return responses
}
