package order

import (
	"context"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories an
// order transition touches. When a function is executed within a scope,
// all repository operations are part of the same database transaction
// and commit or roll back atomically.
//
// The APPROVED transition depends on this: the status write, the stock
// deductions, the movement audit records and the approval record all
// land together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped
// to the current transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// ApprovalRepo returns the approval record repository scoped to the current transaction
	ApprovalRepo() order.ApprovalRecordRepository
	// InventoryRepo returns the inventory repository scoped to the current transaction
	InventoryRepo() inventory.Repository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	orderRepo     order.Repository
	approvalRepo  order.ApprovalRecordRepository
	inventoryRepo inventory.Repository
	movementRepo  inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	approvalRepo order.ApprovalRecordRepository,
	inventoryRepo inventory.Repository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:     orderRepo,
		approvalRepo:  approvalRepo,
		inventoryRepo: inventoryRepo,
		movementRepo:  movementRepo,
	}
}

// Execute runs the function without transactional guarantees.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// ApprovalRepo returns the approval record repository.
func (s *NoOpTransactionScope) ApprovalRepo() order.ApprovalRecordRepository {
	return s.approvalRepo
}

// InventoryRepo returns the inventory repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.Repository {
	return s.inventoryRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
