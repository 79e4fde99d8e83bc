package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// PaymentTermDays is the standard payment term: invoices fall due this
// many days after their issue date.
const PaymentTermDays = 30

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice represents an invoice aggregate root, generated exactly once
// per completed order.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	OrderID       uuid.UUID
	CustomerID    uuid.UUID
	CustomerCode  string
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal // Always Subtotal + TaxAmount
	VATExempt     bool
	Status        InvoiceStatus
	IssueDate     time.Time
	DueDate       time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
}

// NewInvoice creates a new pending invoice for a completed order.
// The due date is IssueDate + PaymentTermDays.
func NewInvoice(invoiceNumber string, orderID, customerID uuid.UUID, customerCode string, totals Totals, issueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerCode == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}
	if totals.Subtotal.IsNegative() || totals.Tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amounts cannot be negative")
	}
	if !totals.Total.Equal(totals.Subtotal.Add(totals.Tax)) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice total must equal subtotal plus tax")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		OrderID:           orderID,
		CustomerID:        customerID,
		CustomerCode:      customerCode,
		Subtotal:          totals.Subtotal,
		TaxAmount:         totals.Tax,
		TotalAmount:       totals.Total,
		VATExempt:         totals.VATExempt,
		Status:            InvoiceStatusPending,
		IssueDate:         issueDate,
		DueDate:           issueDate.AddDate(0, 0, PaymentTermDays),
	}

	inv.AddDomainEvent(NewInvoiceGeneratedEvent(inv))

	return inv, nil
}

// MarkPaid records payment of the invoice.
// Allowed from PENDING and OVERDUE.
func (i *Invoice) MarkPaid(paidAt time.Time) error {
	switch i.Status {
	case InvoiceStatusPending, InvoiceStatusOverdue:
	case InvoiceStatusPaid:
		return shared.NewDomainError("INVALID_STATE", "Invoice is already paid")
	default:
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot pay invoice in %s status", i.Status))
	}

	i.Status = InvoiceStatusPaid
	i.PaidAt = &paidAt
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoicePaidEvent(i))

	return nil
}

// MarkOverdue flags a pending invoice whose due date has passed.
// now is injected so the overdue sweep is testable.
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark invoice overdue in %s status", i.Status))
	}
	if !now.After(i.DueDate) {
		return shared.NewDomainError("NOT_DUE", "Invoice due date has not passed")
	}

	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoiceOverdueEvent(i))

	return nil
}

// Cancel voids an unpaid invoice
func (i *Invoice) Cancel() error {
	switch i.Status {
	case InvoiceStatusPending, InvoiceStatusOverdue:
	default:
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice in %s status", i.Status))
	}

	now := time.Now()
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.UpdatedAt = now

	return nil
}

// IsOverdueAt returns true if the invoice is unpaid and past due at the
// given time
func (i *Invoice) IsOverdueAt(now time.Time) bool {
	return i.Status == InvoiceStatusPending && now.After(i.DueDate)
}

// GetTotalAmountMoney returns the invoice total as Money
func (i *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyOMR(i.TotalAmount)
}

// GetTaxAmountMoney returns the tax amount as Money
func (i *Invoice) GetTaxAmountMoney() valueobject.Money {
	return valueobject.NewMoneyOMR(i.TaxAmount)
}
