package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusInProgress      Status = "IN_PROGRESS"
	StatusDelivered       Status = "DELIVERED"
	StatusCompleted       Status = "COMPLETED"
	StatusCancelled       Status = "CANCELLED"
	StatusRejected        Status = "REJECTED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusInProgress,
		StatusDelivered, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed from this status
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// This is the single source of truth for the order state machine.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPendingApproval:
		return target == StatusApproved || target == StatusRejected || target == StatusCancelled
	case StatusApproved:
		return target == StatusInProgress || target == StatusCancelled
	case StatusInProgress:
		return target == StatusDelivered || target == StatusCancelled
	case StatusDelivered:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusCancelled, StatusRejected:
		return false // Terminal states
	}
	return false
}

// Item represents a line item in an order
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal // Quantity * UnitPrice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem creates a new order line item
func NewItem(orderID, productID uuid.UUID, productName, sku string, quantity decimal.Decimal, unitPrice valueobject.Money) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &Item{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Amount:      quantity.Mul(unitPrice.Amount()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateQuantity updates the item quantity and recalculates the amount
func (i *Item) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	i.Quantity = quantity
	i.Amount = quantity.Mul(i.UnitPrice)
	i.UpdatedAt = time.Now()

	return nil
}

// GetAmountMoney returns the line amount as Money
func (i *Item) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyOMR(i.Amount)
}

// Order represents an order aggregate root.
// It manages the lifecycle of a customer order from submission through
// approval, fulfilment, delivery and completion.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string
	CustomerID   uuid.UUID
	CustomerName string
	CustomerCode string // Short code used in invoice numbering
	VATExempt    bool   // Materialized from the customer at creation time
	Items        []Item
	TotalAmount  decimal.Decimal // Sum of all item amounts
	Status       Status
	Remark       string

	DeliveryConfirmed   bool
	DeliveryConfirmedBy *uuid.UUID
	DeliveryConfirmedAt *time.Time

	ApprovedAt   *time.Time
	RejectedAt   *time.Time
	StartedAt    *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
	RejectReason string
}

// NewOrder creates a new order in PENDING_APPROVAL status
func NewOrder(orderNumber string, customerID uuid.UUID, customerName, customerCode string, vatExempt bool) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if customerCode == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		CustomerCode:      customerCode,
		VATExempt:         vatExempt,
		Items:             make([]Item, 0),
		TotalAmount:       decimal.Zero,
		Status:            StatusPendingApproval,
	}

	o.AddDomainEvent(NewCreatedEvent(o))

	return o, nil
}

// AddItem adds a new line item to the order.
// Only allowed while the order is awaiting approval.
func (o *Order) AddItem(productID uuid.UUID, productName, sku string, quantity decimal.Decimal, unitPrice valueobject.Money) (*Item, error) {
	if o.Status != StatusPendingApproval {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to an order past approval")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewItem(o.ID, productID, productName, sku, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItemQuantity updates the quantity of an existing item
func (o *Order) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if o.Status != StatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items on an order past approval")
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].UpdateQuantity(quantity); err != nil {
				return err
			}
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// RemoveItem removes a line item from the order
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != StatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from an order past approval")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// SetRemark sets the order remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
	o.UpdatedAt = time.Now()
}

// Approve transitions the order to APPROVED.
// approverID is nil when the approval was made automatically by policy;
// stock deduction happens in the same transaction (application service).
func (o *Order) Approve(approverID *uuid.UUID) error {
	if !o.Status.CanTransitionTo(StatusApproved) {
		return o.transitionError(StatusApproved)
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve order without items")
	}

	now := time.Now()
	o.Status = StatusApproved
	o.ApprovedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewApprovedEvent(o, approverID))

	return nil
}

// Reject transitions the order to the terminal REJECTED status.
// Rejection never touches inventory.
func (o *Order) Reject(approverID *uuid.UUID, reason string) error {
	if !o.Status.CanTransitionTo(StatusRejected) {
		return o.transitionError(StatusRejected)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	o.Status = StatusRejected
	o.RejectedAt = &now
	o.RejectReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewRejectedEvent(o, approverID, reason))

	return nil
}

// Start transitions the order to IN_PROGRESS (fulfilment has begun)
func (o *Order) Start() error {
	if !o.Status.CanTransitionTo(StatusInProgress) {
		return o.transitionError(StatusInProgress)
	}

	now := time.Now()
	o.Status = StatusInProgress
	o.StartedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewStartedEvent(o))

	return nil
}

// MarkDelivered transitions the order to DELIVERED
func (o *Order) MarkDelivered() error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return o.transitionError(StatusDelivered)
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewDeliveredEvent(o))

	return nil
}

// ConfirmDelivery records the customer-side delivery confirmation.
// It does not change the order status; Complete requires it.
func (o *Order) ConfirmDelivery(confirmedBy uuid.UUID) error {
	if o.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Delivery can only be confirmed for a delivered order")
	}
	if o.DeliveryConfirmed {
		return nil // Idempotent
	}
	if confirmedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Confirming user ID cannot be empty")
	}

	now := time.Now()
	o.DeliveryConfirmed = true
	o.DeliveryConfirmedBy = &confirmedBy
	o.DeliveryConfirmedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewDeliveryConfirmedEvent(o, confirmedBy))

	return nil
}

// Complete transitions the order to the terminal COMPLETED status.
// Requires a prior delivery confirmation; this rule has no override.
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return o.transitionError(StatusCompleted)
	}
	if !o.DeliveryConfirmed {
		return shared.ErrConfirmationRequired
	}

	now := time.Now()
	o.Status = StatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewCompletedEvent(o))

	return nil
}

// Cancel transitions the order to the terminal CANCELLED status.
// Cancellation never touches inventory: stock deducted at approval
// time stays consumed, matching the movement ledger.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return o.transitionError(StatusCancelled)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewCancelledEvent(o))

	return nil
}

// recalculateTotal recalculates the order total from its items
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

func (o *Order) transitionError(target Status) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
}

// GetTotalAmountMoney returns the order total as Money
func (o *Order) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyOMR(o.TotalAmount)
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsPendingApproval returns true if the order awaits an approval decision
func (o *Order) IsPendingApproval() bool {
	return o.Status == StatusPendingApproval
}

// IsApproved returns true if the order is approved
func (o *Order) IsApproved() bool {
	return o.Status == StatusApproved
}

// IsCompleted returns true if the order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// CanModify returns true if line items can still be changed
func (o *Order) CanModify() bool {
	return o.Status == StatusPendingApproval
}

// GetItem returns an item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}
