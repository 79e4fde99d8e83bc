package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/order"
)

// CreateOrderItemRequest is a line item in an order creation request
type CreateOrderItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required"`
	SKU         string          `json:"sku" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateOrderRequest is the request to submit a new order
type CreateOrderRequest struct {
	CustomerID   uuid.UUID                `json:"customer_id" binding:"required"`
	CustomerName string                   `json:"customer_name" binding:"required"`
	CustomerCode string                   `json:"customer_code" binding:"required"`
	VATExempt    bool                     `json:"vat_exempt"`
	Items        []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Remark       string                   `json:"remark"`
}

// TransitionRequest is the request to move an order to a target status.
// ActorID identifies the user driving the transition; Reason is required
// for CANCELLED and REJECTED.
type TransitionRequest struct {
	Target  order.Status `json:"target" binding:"required"`
	ActorID *uuid.UUID   `json:"actor_id"`
	Reason  string       `json:"reason"`
	Note    string       `json:"note"`
}

// ConfirmDeliveryRequest records the customer-side delivery confirmation
type ConfirmDeliveryRequest struct {
	ConfirmedBy uuid.UUID `json:"confirmed_by" binding:"required"`
}

// OrderListFilter is the filter for listing orders
type OrderListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	CustomerID *uuid.UUID
	Status     *order.Status
}

// OrderItemResponse is a line item in an order response
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse is the full order representation
type OrderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	OrderNumber         string              `json:"order_number"`
	CustomerID          uuid.UUID           `json:"customer_id"`
	CustomerName        string              `json:"customer_name"`
	CustomerCode        string              `json:"customer_code"`
	VATExempt           bool                `json:"vat_exempt"`
	Status              order.Status        `json:"status"`
	Items               []OrderItemResponse `json:"items"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	Remark              string              `json:"remark,omitempty"`
	DeliveryConfirmed   bool                `json:"delivery_confirmed"`
	DeliveryConfirmedBy *uuid.UUID          `json:"delivery_confirmed_by,omitempty"`
	DeliveryConfirmedAt *time.Time          `json:"delivery_confirmed_at,omitempty"`
	ApprovedAt          *time.Time          `json:"approved_at,omitempty"`
	RejectedAt          *time.Time          `json:"rejected_at,omitempty"`
	StartedAt           *time.Time          `json:"started_at,omitempty"`
	DeliveredAt         *time.Time          `json:"delivered_at,omitempty"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	CancelledAt         *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason        string              `json:"cancel_reason,omitempty"`
	RejectReason        string              `json:"reject_reason,omitempty"`
	Version             int                 `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// OrderListItemResponse is the summary representation used in lists
type OrderListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Status       order.Status    `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ItemCount    int             `json:"item_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// StatusSummaryResponse is the per-status order count breakdown
type StatusSummaryResponse struct {
	PendingApproval int64 `json:"pending_approval"`
	Approved        int64 `json:"approved"`
	Rejected        int64 `json:"rejected"`
	InProgress      int64 `json:"in_progress"`
	Delivered       int64 `json:"delivered"`
	Completed       int64 `json:"completed"`
	Cancelled       int64 `json:"cancelled"`
	Total           int64 `json:"total"`
}

// ApprovalRecordResponse is the representation of an approval record
type ApprovalRecordResponse struct {
	ID         uuid.UUID              `json:"id"`
	OrderID    uuid.UUID              `json:"order_id"`
	Decision   order.ApprovalDecision `json:"decision"`
	ApproverID *uuid.UUID             `json:"approver_id,omitempty"`
	System     bool                   `json:"system"`
	OrderTotal decimal.Decimal        `json:"order_total"`
	Threshold  *decimal.Decimal       `json:"threshold,omitempty"`
	Note       string                 `json:"note,omitempty"`
	DecidedAt  time.Time              `json:"decided_at"`
}

// ToOrderResponse converts a domain order to its response representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}

	return OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		CustomerName:        o.CustomerName,
		CustomerCode:        o.CustomerCode,
		VATExempt:           o.VATExempt,
		Status:              o.Status,
		Items:               items,
		TotalAmount:         o.TotalAmount,
		Remark:              o.Remark,
		DeliveryConfirmed:   o.DeliveryConfirmed,
		DeliveryConfirmedBy: o.DeliveryConfirmedBy,
		DeliveryConfirmedAt: o.DeliveryConfirmedAt,
		ApprovedAt:          o.ApprovedAt,
		RejectedAt:          o.RejectedAt,
		StartedAt:           o.StartedAt,
		DeliveredAt:         o.DeliveredAt,
		CompletedAt:         o.CompletedAt,
		CancelledAt:         o.CancelledAt,
		CancelReason:        o.CancelReason,
		RejectReason:        o.RejectReason,
		Version:             o.Version,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// ToOrderListItemResponses converts domain orders to list representations
func ToOrderListItemResponses(orders []order.Order) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		responses[i] = OrderListItemResponse{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			CustomerID:   o.CustomerID,
			CustomerName: o.CustomerName,
			Status:       o.Status,
			TotalAmount:  o.TotalAmount,
			ItemCount:    o.ItemCount(),
			CreatedAt:    o.CreatedAt,
		}
	}
	return responses
}

// ToApprovalRecordResponses converts approval records to response representations
func ToApprovalRecordResponses(records []order.ApprovalRecord) []ApprovalRecordResponse {
	responses := make([]ApprovalRecordResponse, len(records))
	for i, r := range records {
		responses[i] = ApprovalRecordResponse{
			ID:         r.ID,
			OrderID:    r.OrderID,
			Decision:   r.Decision,
			ApproverID: r.ApproverID,
			System:     r.System,
			OrderTotal: r.OrderTotal,
			Threshold:  r.Threshold,
			Note:       r.Note,
			DecidedAt:  r.DecidedAt(),
		}
	}
	return responses
}
