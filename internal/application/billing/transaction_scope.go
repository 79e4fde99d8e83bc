package billing

import (
	"context"

	"github.com/wms/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to the collaborators
// invoice generation touches. The sequence allocation and the invoice
// insert must share one transaction: if the insert fails, the rollback
// also returns the allocated value, so committed sequences never have
// gaps.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing collaborators
// scoped to the current transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// Allocator returns the sequence allocator scoped to the current transaction
	Allocator() billing.SequenceAllocator
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	invoiceRepo billing.InvoiceRepository
	allocator   billing.SequenceAllocator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given collaborators.
func NewNoOpTransactionScope(invoiceRepo billing.InvoiceRepository, allocator billing.SequenceAllocator) *NoOpTransactionScope {
	return &NoOpTransactionScope{invoiceRepo: invoiceRepo, allocator: allocator}
}

// Execute runs the function without transactional guarantees.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// Allocator returns the sequence allocator.
func (s *NoOpTransactionScope) Allocator() billing.SequenceAllocator {
	return s.allocator
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
