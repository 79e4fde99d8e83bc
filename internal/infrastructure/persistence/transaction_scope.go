package persistence

import (
	"context"

	"gorm.io/gorm"

	appBilling "github.com/wms/backend/internal/application/billing"
	appOrder "github.com/wms/backend/internal/application/order"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/order"
)

// GormTransactionScope implements appOrder.TransactionScope. Every
// repository handed to the callback is bound to the same transaction,
// so the order status write, the stock deductions, and the movement
// records commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appOrder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides transaction-scoped repositories
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ApprovalRepo() order.ApprovalRecordRepository {
	return NewGormApprovalRecordRepository(r.tx)
}

func (r *gormTransactionalRepositories) InventoryRepo() inventory.Repository {
	return NewGormInventoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Ensure GormTransactionScope implements appOrder.TransactionScope
var _ appOrder.TransactionScope = (*GormTransactionScope)(nil)

// GormBillingTransactionScope implements appBilling.TransactionScope.
// The sequence upsert and the invoice insert run on the same
// transaction: a failed insert rolls the allocated value back with it,
// so a committed counter always matches a committed invoice.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appBilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingTransactionalRepositories{tx: tx})
	})
}

// gormBillingTransactionalRepositories provides transaction-scoped collaborators
type gormBillingTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormBillingTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormBillingTransactionalRepositories) Allocator() billing.SequenceAllocator {
	return NewGormSequenceAllocator(r.tx)
}

// Ensure GormBillingTransactionScope implements appBilling.TransactionScope
var _ appBilling.TransactionScope = (*GormBillingTransactionScope)(nil)
