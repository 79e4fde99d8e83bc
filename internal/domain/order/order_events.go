package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated           = "OrderCreated"
	EventTypeOrderApproved          = "OrderApproved"
	EventTypeOrderRejected          = "OrderRejected"
	EventTypeOrderStarted           = "OrderStarted"
	EventTypeOrderDelivered         = "OrderDelivered"
	EventTypeOrderDeliveryConfirmed = "OrderDeliveryConfirmed"
	EventTypeOrderCompleted         = "OrderCompleted"
	EventTypeOrderCancelled         = "OrderCancelled"
)

// ItemInfo represents line item information carried on events
type ItemInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

func itemInfos(items []Item) []ItemInfo {
	infos := make([]ItemInfo, len(items))
	for i, item := range items {
		infos[i] = ItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return infos
}

// CreatedEvent is raised when a new order is submitted
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		TotalAmount:     o.TotalAmount,
	}
}

// EventType returns the event type name
func (e *CreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// ApprovedEvent is raised when an order is approved.
// ApproverID is nil for automatic policy approvals.
type ApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID  `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerID   uuid.UUID  `json:"customer_id"`
	ApproverID   *uuid.UUID `json:"approver_id,omitempty"`
	AutoApproved bool       `json:"auto_approved"`
	Items        []ItemInfo `json:"items"`
}

// NewApprovedEvent creates a new ApprovedEvent
func NewApprovedEvent(o *Order, approverID *uuid.UUID) *ApprovedEvent {
	return &ApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		ApproverID:      approverID,
		AutoApproved:    approverID == nil,
		Items:           itemInfos(o.Items),
	}
}

// EventType returns the event type name
func (e *ApprovedEvent) EventType() string {
	return EventTypeOrderApproved
}

// RejectedEvent is raised when an order is rejected
type RejectedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	ApproverID  *uuid.UUID `json:"approver_id,omitempty"`
	Reason      string     `json:"reason"`
}

// NewRejectedEvent creates a new RejectedEvent
func NewRejectedEvent(o *Order, approverID *uuid.UUID, reason string) *RejectedEvent {
	return &RejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRejected, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		ApproverID:      approverID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *RejectedEvent) EventType() string {
	return EventTypeOrderRejected
}

// StartedEvent is raised when fulfilment of an order begins
type StartedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewStartedEvent creates a new StartedEvent
func NewStartedEvent(o *Order) *StartedEvent {
	return &StartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStarted, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

// EventType returns the event type name
func (e *StartedEvent) EventType() string {
	return EventTypeOrderStarted
}

// DeliveredEvent is raised when an order is marked delivered
type DeliveredEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewDeliveredEvent creates a new DeliveredEvent
func NewDeliveredEvent(o *Order) *DeliveredEvent {
	return &DeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

// EventType returns the event type name
func (e *DeliveredEvent) EventType() string {
	return EventTypeOrderDelivered
}

// DeliveryConfirmedEvent is raised when the customer confirms delivery
type DeliveryConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	ConfirmedBy uuid.UUID `json:"confirmed_by"`
}

// NewDeliveryConfirmedEvent creates a new DeliveryConfirmedEvent
func NewDeliveryConfirmedEvent(o *Order, confirmedBy uuid.UUID) *DeliveryConfirmedEvent {
	return &DeliveryConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeliveryConfirmed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		ConfirmedBy:     confirmedBy,
	}
}

// EventType returns the event type name
func (e *DeliveryConfirmedEvent) EventType() string {
	return EventTypeOrderDeliveryConfirmed
}

// CompletedEvent is raised when an order reaches COMPLETED.
// This event triggers invoice generation in the billing context.
type CompletedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerCode string          `json:"customer_code"`
	VATExempt    bool            `json:"vat_exempt"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewCompletedEvent creates a new CompletedEvent
func NewCompletedEvent(o *Order) *CompletedEvent {
	return &CompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerCode:    o.CustomerCode,
		VATExempt:       o.VATExempt,
		TotalAmount:     o.TotalAmount,
	}
}

// EventType returns the event type name
func (e *CompletedEvent) EventType() string {
	return EventTypeOrderCompleted
}

// CancelledEvent is raised when an order is cancelled
type CancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID  `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerID   uuid.UUID  `json:"customer_id"`
	Items        []ItemInfo `json:"items"`
	CancelReason string     `json:"cancel_reason"`
}

// NewCancelledEvent creates a new CancelledEvent
func NewCancelledEvent(o *Order) *CancelledEvent {
	return &CancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Items:           itemInfos(o.Items),
		CancelReason:    o.CancelReason,
	}
}

// EventType returns the event type name
func (e *CancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}
