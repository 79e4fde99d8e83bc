package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
)

// GormSequenceAllocator implements billing.SequenceAllocator with an
// atomic upsert on the invoice_sequences table. The increment happens
// inside a single INSERT ... ON CONFLICT DO UPDATE ... RETURNING
// statement, so concurrent allocations for the same (customer, year)
// serialize on the row and each receive a distinct value.
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Next returns the next sequence value for the customer and year
func (a *GormSequenceAllocator) Next(ctx context.Context, customerID uuid.UUID, year int) (int64, error) {
	var next int64
	err := a.db.WithContext(ctx).Raw(`
		INSERT INTO invoice_sequences (customer_id, year, last_value, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (customer_id, year)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = EXCLUDED.updated_at
		RETURNING last_value`,
		customerID, year, time.Now(),
	).Scan(&next).Error
	if err != nil {
		if isSerializationFailure(err) {
			return 0, shared.ErrSequenceConflict
		}
		return 0, err
	}
	return next, nil
}

// isSerializationFailure reports whether the error is a transaction
// serialization or deadlock failure that the caller should retry.
// Postgres SQLSTATE 40001 (serialization_failure) and 40P01 (deadlock_detected).
func isSerializationFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected")
}

// Ensure GormSequenceAllocator implements billing.SequenceAllocator
var _ billing.SequenceAllocator = (*GormSequenceAllocator)(nil)
