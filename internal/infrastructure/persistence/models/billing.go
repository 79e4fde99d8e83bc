package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/billing"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The unique index on OrderID enforces one invoice per order at the
// database level; concurrent generation loses the race with a unique
// violation that the repository maps to ErrDuplicateInvoice.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerCode  string                `gorm:"type:varchar(50);not null"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,3);not null"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(18,3);not null"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,3);not null"`
	VATExempt     bool                  `gorm:"not null;default:false"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	IssueDate     time.Time             `gorm:"not null"`
	DueDate       time.Time             `gorm:"not null;index"`
	PaidAt        *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		OrderID:           m.OrderID,
		CustomerID:        m.CustomerID,
		CustomerCode:      m.CustomerCode,
		Subtotal:          m.Subtotal,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		VATExempt:         m.VATExempt,
		Status:            m.Status,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.OrderID = inv.OrderID
	m.CustomerID = inv.CustomerID
	m.CustomerCode = inv.CustomerCode
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.VATExempt = inv.VATExempt
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceSequenceModel backs the per-customer, per-year invoice sequence.
// Allocation happens through an atomic upsert on (customer_id, year).
type InvoiceSequenceModel struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primary_key"`
	Year       int       `gorm:"primary_key"`
	LastValue  int64     `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}
