package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/billing"
)

// InvoiceResponse is the full invoice representation
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	OrderID       uuid.UUID             `json:"order_id"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	CustomerCode  string                `json:"customer_code"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	VATExempt     bool                  `json:"vat_exempt"`
	Status        billing.InvoiceStatus `json:"status"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       time.Time             `json:"due_date"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceListFilter is the filter for listing invoices
type InvoiceListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	CustomerID *uuid.UUID
	Status     *billing.InvoiceStatus
}

// ToInvoiceResponse converts a domain invoice to its response representation
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		OrderID:       inv.OrderID,
		CustomerID:    inv.CustomerID,
		CustomerCode:  inv.CustomerCode,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		VATExempt:     inv.VATExempt,
		Status:        inv.Status,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		CancelledAt:   inv.CancelledAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts domain invoices to response representations
func ToInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}
