package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]billing.Invoice, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSequenceAllocator is a mock implementation of billing.SequenceAllocator
type MockSequenceAllocator struct {
	mock.Mock
}

func (m *MockSequenceAllocator) Next(ctx context.Context, customerID uuid.UUID, year int) (int64, error) {
	args := m.Called(ctx, customerID, year)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Fixtures

func completedOrder(t *testing.T, vatExempt bool) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ORD-2026-00001", uuid.New(), "Test Customer", "ACME", vatExempt)
	require.NoError(t, err)
	price, err := valueobject.NewMoneyOMRFromString("85.000")
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), "Widget", "SKU-001", decimal.NewFromInt(3), price)
	require.NoError(t, err)
	approver := uuid.New()
	require.NoError(t, o.Approve(&approver))
	require.NoError(t, o.Start())
	require.NoError(t, o.MarkDelivered())
	require.NoError(t, o.ConfirmDelivery(uuid.New()))
	require.NoError(t, o.Complete())
	o.ClearDomainEvents()
	return o
}

// recordingTxScope runs each unit of work through a NoOpTransactionScope
// and records whether it would have committed or rolled back
type recordingTxScope struct {
	inner    *NoOpTransactionScope
	outcomes []error
}

func (s *recordingTxScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	err := s.inner.Execute(ctx, fn)
	s.outcomes = append(s.outcomes, err)
	return err
}

func newBillingFixture() (*MockInvoiceRepository, *MockOrderRepository, *MockSequenceAllocator, *Service) {
	invoiceRepo, orderRepo, allocator, _, svc := newBillingFixtureWithScope()
	return invoiceRepo, orderRepo, allocator, svc
}

func newBillingFixtureWithScope() (*MockInvoiceRepository, *MockOrderRepository, *MockSequenceAllocator, *recordingTxScope, *Service) {
	invoiceRepo := new(MockInvoiceRepository)
	orderRepo := new(MockOrderRepository)
	allocator := new(MockSequenceAllocator)
	txScope := &recordingTxScope{inner: NewNoOpTransactionScope(invoiceRepo, allocator)}
	svc := NewService(invoiceRepo, orderRepo, txScope, billing.DefaultVATRatePercent, zap.NewNop())
	svc.SetClock(func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	})
	return invoiceRepo, orderRepo, allocator, txScope, svc
}

func TestService_GenerateForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("generates invoice with formatted number and totals", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()
		o := completedOrder(t, false) // subtotal 255.000

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(1), nil)
		invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.GenerateForOrder(ctx, o.ID)
		require.NoError(t, err)

		assert.Equal(t, "ACME-INV-2026-0001", resp.InvoiceNumber)
		assert.Equal(t, "255.000", resp.Subtotal.StringFixed(3))
		assert.Equal(t, "12.750", resp.TaxAmount.StringFixed(3))
		assert.Equal(t, "267.750", resp.TotalAmount.StringFixed(3))
		assert.Equal(t, billing.InvoiceStatusPending, resp.Status)
		assert.Equal(t, time.Date(2026, 9, 27, 12, 0, 0, 0, time.UTC), resp.DueDate)
	})

	t.Run("VAT exempt order gets zero tax", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()
		o := completedOrder(t, true)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(7), nil)
		invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.GenerateForOrder(ctx, o.ID)
		require.NoError(t, err)

		assert.Equal(t, "ACME-INV-2026-0007", resp.InvoiceNumber)
		assert.True(t, resp.TaxAmount.IsZero())
		assert.Equal(t, resp.Subtotal, resp.TotalAmount)
	})

	t.Run("returns existing invoice unchanged", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()
		o := completedOrder(t, false)

		totals, err := billing.ComputeTotals(o.TotalAmount, false, billing.DefaultVATRatePercent)
		require.NoError(t, err)
		existing, err := billing.NewInvoice("ACME-INV-2026-0001", o.ID, o.CustomerID, "ACME", totals, time.Now())
		require.NoError(t, err)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(existing, nil)

		resp, err := svc.GenerateForOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.InvoiceNumber, resp.InvoiceNumber)

		orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		allocator.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retries bounded times on sequence conflict", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()
		o := completedOrder(t, false)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(0), shared.ErrSequenceConflict).Twice()
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(3), nil).Once()
		invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.GenerateForOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACME-INV-2026-0003", resp.InvoiceNumber)
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()
		o := completedOrder(t, false)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(0), shared.ErrSequenceConflict)

		_, err := svc.GenerateForOrder(ctx, o.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrSequenceConflict)

		allocator.AssertNumberOfCalls(t, "Next", maxSequenceRetries)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("failed insert rolls the allocation back with its transaction", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, txScope, svc := newBillingFixtureWithScope()
		o := completedOrder(t, false)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(9), nil)
		invoiceRepo.On("Save", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := svc.GenerateForOrder(ctx, o.ID)
		require.Error(t, err)

		// The allocation ran in the same unit of work as the insert,
		// and that unit ended in rollback: no committed gap.
		require.Len(t, txScope.outcomes, 1)
		assert.Error(t, txScope.outcomes[0])
		allocator.AssertNumberOfCalls(t, "Next", 1)
	})

	t.Run("concurrent duplicate returns the winner", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()
		o := completedOrder(t, false)

		totals, err := billing.ComputeTotals(o.TotalAmount, false, billing.DefaultVATRatePercent)
		require.NoError(t, err)
		winner, err := billing.NewInvoice("ACME-INV-2026-0002", o.ID, o.CustomerID, "ACME", totals, time.Now())
		require.NoError(t, err)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound).Once()
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		allocator.On("Next", ctx, o.CustomerID, 2026).Return(int64(3), nil)
		invoiceRepo.On("Save", ctx, mock.Anything).Return(shared.ErrDuplicateInvoice)
		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(winner, nil).Once()

		resp, err := svc.GenerateForOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACME-INV-2026-0002", resp.InvoiceNumber)
	})

	t.Run("rejects non-completed order", func(t *testing.T) {
		invoiceRepo, orderRepo, allocator, svc := newBillingFixture()

		o, err := order.NewOrder("ORD-2026-00002", uuid.New(), "Test Customer", "ACME", false)
		require.NoError(t, err)

		invoiceRepo.On("FindByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err = svc.GenerateForOrder(ctx, o.ID)
		assert.Error(t, err)
		allocator.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_MarkPaid(t *testing.T) {
	ctx := context.Background()
	invoiceRepo, _, _, svc := newBillingFixture()

	totals, err := billing.ComputeTotals(decimal.NewFromInt(100), false, billing.DefaultVATRatePercent)
	require.NoError(t, err)
	inv, err := billing.NewInvoice("ACME-INV-2026-0005", uuid.New(), uuid.New(), "ACME", totals, time.Now())
	require.NoError(t, err)
	inv.ClearDomainEvents()

	invoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
	invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil)

	resp, err := svc.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, resp.Status)
	assert.NotNil(t, resp.PaidAt)
}

func TestService_SweepOverdue(t *testing.T) {
	ctx := context.Background()
	invoiceRepo, _, _, svc := newBillingFixture()

	totals, err := billing.ComputeTotals(decimal.NewFromInt(50), false, billing.DefaultVATRatePercent)
	require.NoError(t, err)

	// Issued long enough ago to be past due at the fixed clock
	issue := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	overdue1, err := billing.NewInvoice("ACME-INV-2026-0001", uuid.New(), uuid.New(), "ACME", totals, issue)
	require.NoError(t, err)
	overdue1.ClearDomainEvents()
	overdue2, err := billing.NewInvoice("GULF-INV-2026-0001", uuid.New(), uuid.New(), "GULF", totals, issue)
	require.NoError(t, err)
	overdue2.ClearDomainEvents()

	invoiceRepo.On("FindDueBefore", ctx, mock.Anything, 100).Return([]billing.Invoice{*overdue1, *overdue2}, nil)
	invoiceRepo.On("SaveWithLock", ctx, mock.Anything).Return(nil)

	flagged, err := svc.SweepOverdue(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, flagged)
}
