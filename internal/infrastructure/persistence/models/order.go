package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber  string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName string           `gorm:"type:varchar(200);not null"`
	CustomerCode string           `gorm:"type:varchar(50);not null"`
	VATExempt    bool             `gorm:"not null;default:false"`
	Items        []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(18,3);not null;default:0"`
	Status       order.Status     `gorm:"type:varchar(20);not null;default:'PENDING_APPROVAL';index"`
	Remark       string           `gorm:"type:text"`

	DeliveryConfirmed   bool       `gorm:"not null;default:false"`
	DeliveryConfirmedBy *uuid.UUID `gorm:"type:uuid"`
	DeliveryConfirmedAt *time.Time

	ApprovedAt   *time.Time `gorm:"index"`
	RejectedAt   *time.Time
	StartedAt    *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time `gorm:"index"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
	RejectReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		CustomerCode:      m.CustomerCode,
		VATExempt:         m.VATExempt,
		TotalAmount:       m.TotalAmount,
		Status:            m.Status,
		Remark:            m.Remark,

		DeliveryConfirmed:   m.DeliveryConfirmed,
		DeliveryConfirmedBy: m.DeliveryConfirmedBy,
		DeliveryConfirmedAt: m.DeliveryConfirmedAt,

		ApprovedAt:   m.ApprovedAt,
		RejectedAt:   m.RejectedAt,
		StartedAt:    m.StartedAt,
		DeliveredAt:  m.DeliveredAt,
		CompletedAt:  m.CompletedAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
		RejectReason: m.RejectReason,

		Items: make([]order.Item, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.CustomerCode = o.CustomerCode
	m.VATExempt = o.VATExempt
	m.TotalAmount = o.TotalAmount
	m.Status = o.Status
	m.Remark = o.Remark
	m.DeliveryConfirmed = o.DeliveryConfirmed
	m.DeliveryConfirmedBy = o.DeliveryConfirmedBy
	m.DeliveryConfirmedAt = o.DeliveryConfirmedAt
	m.ApprovedAt = o.ApprovedAt
	m.RejectedAt = o.RejectedAt
	m.StartedAt = o.StartedAt
	m.DeliveredAt = o.DeliveredAt
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.RejectReason = o.RejectReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&item)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for the order line item entity.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"type:varchar(50);not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order Item entity.
func (m *OrderItemModel) ToDomain() *order.Item {
	return &order.Item{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		SKU:         m.SKU,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain order Item.
func OrderItemModelFromDomain(item *order.Item) *OrderItemModel {
	return &OrderItemModel{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		SKU:         item.SKU,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ApprovalRecordModel is the persistence model for approval records.
// Records are append-only; there is no update path.
type ApprovalRecordModel struct {
	BaseModel
	OrderID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Decision   order.ApprovalDecision `gorm:"type:varchar(20);not null"`
	ApproverID *uuid.UUID             `gorm:"type:uuid"`
	System     bool                   `gorm:"not null;default:false"`
	OrderTotal decimal.Decimal        `gorm:"type:decimal(18,3);not null"`
	Threshold  *decimal.Decimal       `gorm:"type:decimal(18,3)"`
	Note       string                 `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ApprovalRecordModel) TableName() string {
	return "approval_records"
}

// ToDomain converts the persistence model to a domain ApprovalRecord entity.
func (m *ApprovalRecordModel) ToDomain() *order.ApprovalRecord {
	return &order.ApprovalRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		Decision:   m.Decision,
		ApproverID: m.ApproverID,
		System:     m.System,
		OrderTotal: m.OrderTotal,
		Threshold:  m.Threshold,
		Note:       m.Note,
	}
}

// ApprovalRecordModelFromDomain creates a persistence model from a domain ApprovalRecord.
func ApprovalRecordModelFromDomain(record *order.ApprovalRecord) *ApprovalRecordModel {
	m := &ApprovalRecordModel{
		OrderID:    record.OrderID,
		Decision:   record.Decision,
		ApproverID: record.ApproverID,
		System:     record.System,
		OrderTotal: record.OrderTotal,
		Threshold:  record.Threshold,
		Note:       record.Note,
	}
	m.FromDomainBaseEntity(record.BaseEntity)
	return m
}
