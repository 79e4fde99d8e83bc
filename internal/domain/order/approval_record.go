package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// ApprovalDecision represents the outcome of an approval review
type ApprovalDecision string

const (
	ApprovalDecisionApproved ApprovalDecision = "APPROVED"
	ApprovalDecisionRejected ApprovalDecision = "REJECTED"
)

// IsValid checks if the decision is a valid ApprovalDecision
func (d ApprovalDecision) IsValid() bool {
	return d == ApprovalDecisionApproved || d == ApprovalDecisionRejected
}

// ApprovalRecord is an append-only audit record of an approval decision.
// ApproverID is nil when the decision was made automatically by the
// approval policy; System is true in that case.
type ApprovalRecord struct {
	shared.BaseEntity
	OrderID    uuid.UUID
	Decision   ApprovalDecision
	ApproverID *uuid.UUID
	System     bool
	OrderTotal decimal.Decimal // Order total at decision time
	Threshold  *decimal.Decimal
	Note       string
}

// NewApprovalRecord creates a manual approval record
func NewApprovalRecord(orderID uuid.UUID, decision ApprovalDecision, approverID uuid.UUID, orderTotal decimal.Decimal, note string) (*ApprovalRecord, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if !decision.IsValid() {
		return nil, shared.NewDomainError("INVALID_DECISION", "Approval decision must be APPROVED or REJECTED")
	}
	if approverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	return &ApprovalRecord{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Decision:   decision,
		ApproverID: &approverID,
		System:     false,
		OrderTotal: orderTotal,
		Note:       note,
	}, nil
}

// NewSystemApprovalRecord creates an approval record for an automatic
// policy decision. threshold is the auto-approve threshold in effect,
// nil when approval is disabled outright.
func NewSystemApprovalRecord(orderID uuid.UUID, orderTotal decimal.Decimal, threshold *decimal.Decimal) (*ApprovalRecord, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}

	note := "Auto-approved: approval not required"
	if threshold != nil {
		note = "Auto-approved: order total within threshold"
	}
	return &ApprovalRecord{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Decision:   ApprovalDecisionApproved,
		ApproverID: nil,
		System:     true,
		OrderTotal: orderTotal,
		Threshold:  threshold,
		Note:       note,
	}, nil
}

// DecidedAt returns when the decision was recorded
func (r *ApprovalRecord) DecidedAt() time.Time {
	return r.CreatedAt
}
