package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SequenceAllocator hands out per-customer, per-year invoice sequence
// numbers. Allocation must be atomic: two concurrent allocations for the
// same (customer, year) never receive the same value.
type SequenceAllocator interface {
	// Next returns the next sequence value for the customer and year,
	// starting at 1. Implementations return shared.ErrSequenceConflict
	// when an allocation race cannot be resolved.
	Next(ctx context.Context, customerID uuid.UUID, year int) (int64, error)
}

// FormatInvoiceNumber renders the canonical invoice number:
// {customerCode}-INV-{year}-{seq}. The sequence is zero-padded to four
// digits and grows unpadded past 9999.
func FormatInvoiceNumber(customerCode string, year int, seq int64) string {
	return fmt.Sprintf("%s-INV-%d-%04d", customerCode, year, seq)
}
