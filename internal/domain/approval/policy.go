package approval

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// Config holds the workflow configuration that drives approval decisions
type Config struct {
	// RequireApproval gates the whole approval step. When false every
	// order is approved automatically regardless of total.
	RequireApproval bool

	// AutoApproveThreshold is the inclusive order-total ceiling for
	// automatic approval. Nil means no threshold: every order needs a
	// manual decision (when RequireApproval is true).
	AutoApproveThreshold *decimal.Decimal
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	if c.AutoApproveThreshold != nil && c.AutoApproveThreshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Auto-approve threshold cannot be negative")
	}
	return nil
}

// Outcome is the result of evaluating the approval policy for an order
type Outcome string

const (
	// OutcomeAutoApproved means the order can be approved immediately
	// with a system-generated approval record.
	OutcomeAutoApproved Outcome = "AUTO_APPROVED"

	// OutcomeManualReview means the order stays pending until a human
	// approver decides.
	OutcomeManualReview Outcome = "MANUAL_REVIEW"
)

// Decision captures the policy evaluation for auditing
type Decision struct {
	Outcome   Outcome
	Threshold *decimal.Decimal // Threshold in effect at decision time
}

// AutoApproved returns true if the order needs no manual review
func (d Decision) AutoApproved() bool {
	return d.Outcome == OutcomeAutoApproved
}

// Decide evaluates the approval policy for an order total.
// The threshold comparison is inclusive: a total exactly at the
// threshold is auto-approved.
func Decide(total decimal.Decimal, cfg Config) Decision {
	if !cfg.RequireApproval {
		return Decision{Outcome: OutcomeAutoApproved, Threshold: cfg.AutoApproveThreshold}
	}
	if cfg.AutoApproveThreshold != nil && total.LessThanOrEqual(*cfg.AutoApproveThreshold) {
		return Decision{Outcome: OutcomeAutoApproved, Threshold: cfg.AutoApproveThreshold}
	}
	return Decision{Outcome: OutcomeManualReview, Threshold: cfg.AutoApproveThreshold}
}

// ConfigStore provides access to the persisted workflow configuration
type ConfigStore interface {
	// Get returns the approval configuration in effect for a customer.
	// Implementations may serve a single global configuration and
	// ignore the customer, but the contract keeps per-customer policies
	// possible without touching callers.
	Get(ctx context.Context, customerID uuid.UUID) (Config, error)

	// Update replaces the approval configuration
	Update(ctx context.Context, cfg Config) error
}
