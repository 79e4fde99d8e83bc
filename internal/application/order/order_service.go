package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/approval"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// InvoiceGenerator creates the invoice for a completed order. The
// completed transition only reports success once generation succeeded;
// generation is idempotent so retries of the transition are safe.
type InvoiceGenerator interface {
	GenerateForOrder(ctx context.Context, orderID uuid.UUID) error
}

// InvoiceGeneratorFunc adapts a plain function to InvoiceGenerator
type InvoiceGeneratorFunc func(ctx context.Context, orderID uuid.UUID) error

// GenerateForOrder calls f
func (f InvoiceGeneratorFunc) GenerateForOrder(ctx context.Context, orderID uuid.UUID) error {
	return f(ctx, orderID)
}

// Service handles order lifecycle operations. All status changes go
// through Transition so the state machine has a single enforcement
// point above the domain layer.
type Service struct {
	orderRepo      order.Repository
	approvalRepo   order.ApprovalRecordRepository
	configStore    approval.ConfigStore
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	invoiceGen     InvoiceGenerator
	logger         *zap.Logger
}

// NewService creates a new order Service
func NewService(
	orderRepo order.Repository,
	approvalRepo order.ApprovalRecordRepository,
	configStore approval.ConfigStore,
	txScope TransactionScope,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:    orderRepo,
		approvalRepo: approvalRepo,
		configStore:  configStore,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetInvoiceGenerator wires the billing collaborator invoked when an
// order completes
func (s *Service) SetInvoiceGenerator(gen InvoiceGenerator) {
	s.invoiceGen = gen
}

// Create submits a new order. The approval policy is consulted
// immediately: orders at or under the auto-approve threshold are
// approved in the same call, with stock deducted atomically. If the
// automatic deduction fails on stock, the order stays pending for a
// manual decision once stock is replenished.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, req.CustomerID, req.CustomerName, req.CustomerCode, req.VATExempt)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		unitPrice := valueobject.NewMoneyOMR(item.UnitPrice)
		if _, err := o.AddItem(item.ProductID, item.ProductName, item.SKU, item.Quantity, unitPrice); err != nil {
			return nil, err
		}
	}

	if req.Remark != "" {
		o.SetRemark(req.Remark)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	cfg, err := s.configStore.Get(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}

	decision := approval.Decide(o.TotalAmount, cfg)
	if decision.AutoApproved() {
		approved, err := s.approve(ctx, o.ID, nil, "", decision.Threshold)
		if err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				s.logger.Warn("auto-approval blocked by stock, order left pending",
					zap.String("order_id", o.ID.String()),
					zap.Error(err))
				resp := ToOrderResponse(o)
				return &resp, nil
			}
			return nil, err
		}
		resp := ToOrderResponse(approved)
		return &resp, nil
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByOrderNumber retrieves an order by its order number
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}

// StatusSummary returns order counts per status
func (s *Service) StatusSummary(ctx context.Context) (*StatusSummaryResponse, error) {
	summary := &StatusSummaryResponse{}
	for _, entry := range []struct {
		status order.Status
		target *int64
	}{
		{order.StatusPendingApproval, &summary.PendingApproval},
		{order.StatusApproved, &summary.Approved},
		{order.StatusRejected, &summary.Rejected},
		{order.StatusInProgress, &summary.InProgress},
		{order.StatusDelivered, &summary.Delivered},
		{order.StatusCompleted, &summary.Completed},
		{order.StatusCancelled, &summary.Cancelled},
	} {
		count, err := s.orderRepo.CountByStatus(ctx, entry.status)
		if err != nil {
			return nil, err
		}
		*entry.target = count
		summary.Total += count
	}
	return summary, nil
}

// ListApprovals returns the approval history of an order
func (s *Service) ListApprovals(ctx context.Context, orderID uuid.UUID) ([]ApprovalRecordResponse, error) {
	records, err := s.approvalRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToApprovalRecordResponses(records), nil
}

// Transition moves an order to the target status. This is the single
// entry point for status changes; the domain rejects anything outside
// the transition table.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, req TransitionRequest) (*OrderResponse, error) {
	switch req.Target {
	case order.StatusApproved:
		if req.ActorID == nil {
			return nil, shared.NewDomainError("INVALID_APPROVER", "Manual approval requires an approver")
		}
		o, err := s.approve(ctx, orderID, req.ActorID, req.Note, nil)
		if err != nil {
			return nil, err
		}
		resp := ToOrderResponse(o)
		return &resp, nil

	case order.StatusRejected:
		return s.reject(ctx, orderID, req.ActorID, req.Reason)

	case order.StatusInProgress:
		return s.mutate(ctx, orderID, func(o *order.Order) error { return o.Start() })

	case order.StatusDelivered:
		return s.mutate(ctx, orderID, func(o *order.Order) error { return o.MarkDelivered() })

	case order.StatusCompleted:
		return s.complete(ctx, orderID)

	case order.StatusCancelled:
		return s.cancel(ctx, orderID, req.Reason)

	default:
		if !req.Target.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown target status")
		}
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Target status cannot be reached directly")
	}
}

// ConfirmDelivery records the customer-side delivery confirmation
func (s *Service) ConfirmDelivery(ctx context.Context, orderID uuid.UUID, req ConfirmDeliveryRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.ConfirmDelivery(req.ConfirmedBy)
	})
}

// approve runs the approval transaction: status change, all-or-nothing
// stock deduction, movement audit records and the approval record commit
// together. Stock rows are locked in ascending SKU order so concurrent
// approvals with overlapping lines cannot deadlock each other.
// approverID nil means a policy auto-approval.
func (s *Service) approve(ctx context.Context, orderID uuid.UUID, approverID *uuid.UUID, note string, threshold *decimal.Decimal) (*order.Order, error) {
	var approved *order.Order

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := o.Approve(approverID); err != nil {
			return err
		}

		lines := make([]inventory.DeductionLine, 0, len(o.Items))
		for _, item := range o.Items {
			lines = append(lines, inventory.DeductionLine{SKU: item.SKU, Quantity: item.Quantity})
		}
		if err := inventory.ValidateDeductionLines(lines); err != nil {
			return err
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].SKU < lines[j].SKU })

		skus := make([]string, len(lines))
		for i, line := range lines {
			skus[i] = line.SKU
		}
		stock, err := repos.InventoryRepo().FindBySKUsForUpdate(ctx, skus)
		if err != nil {
			return err
		}
		bySKU := make(map[string]*inventory.Item, len(stock))
		for i := range stock {
			bySKU[stock[i].SKU] = &stock[i]
		}

		// Check every line before deducting anything, so a failure on a
		// later line surfaces without earlier lines half-applied.
		for _, line := range lines {
			item, ok := bySKU[line.SKU]
			if !ok {
				return shared.NewDomainError("UNKNOWN_SKU",
					fmt.Sprintf("SKU %s is not registered in inventory", line.SKU))
			}
			if !item.CanFulfill(line.Quantity) {
				return &inventory.InsufficientStockError{
					SKU:       line.SKU,
					Available: item.Quantity,
					Requested: line.Quantity,
				}
			}
		}

		movements := make([]*inventory.StockMovement, 0, len(lines))
		for _, line := range lines {
			item := bySKU[line.SKU]
			before := item.Quantity
			if err := item.Deduct(line.Quantity); err != nil {
				return err
			}
			// The quantity guard in the conditional update keeps the
			// write honest even against stock changed outside the locks.
			if _, err := repos.InventoryRepo().DeductQuantity(ctx, line.SKU, line.Quantity); err != nil {
				return err // Rolls back every deduction made so far
			}

			m, err := inventory.NewStockMovement(item.ID, line.SKU, inventory.MovementTypeDeduction,
				line.Quantity, before, item.Quantity)
			if err != nil {
				return err
			}
			m.WithOrderID(o.ID).WithReason("order approved")
			if approverID != nil {
				m.WithOperatorID(*approverID)
			}
			movements = append(movements, m)
		}

		var record *order.ApprovalRecord
		if approverID == nil {
			record, err = order.NewSystemApprovalRecord(o.ID, o.TotalAmount, threshold)
		} else {
			record, err = order.NewApprovalRecord(o.ID, order.ApprovalDecisionApproved, *approverID, o.TotalAmount, note)
		}
		if err != nil {
			return err
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		if err := repos.ApprovalRepo().Save(ctx, record); err != nil {
			return err
		}
		if err := repos.MovementRepo().SaveAll(ctx, movements); err != nil {
			return err
		}

		approved = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, approved)
	return approved, nil
}

// reject records a manual rejection. Inventory is never touched.
func (s *Service) reject(ctx context.Context, orderID uuid.UUID, approverID *uuid.UUID, reason string) (*OrderResponse, error) {
	if approverID == nil {
		return nil, shared.NewDomainError("INVALID_APPROVER", "Rejection requires an approver")
	}

	var rejected *order.Order

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := o.Reject(approverID, reason); err != nil {
			return err
		}

		record, err := order.NewApprovalRecord(o.ID, order.ApprovalDecisionRejected, *approverID, o.TotalAmount, reason)
		if err != nil {
			return err
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		if err := repos.ApprovalRepo().Save(ctx, record); err != nil {
			return err
		}

		rejected = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, rejected)
	resp := ToOrderResponse(rejected)
	return &resp, nil
}

// complete finishes an order and generates its invoice. Generation is
// part of the completed transition: a failure surfaces as the
// transition's error instead of disappearing into a log line.
// Generation is idempotent per order, so the event-driven redelivery
// path can safely run it again.
func (s *Service) complete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	resp, err := s.mutate(ctx, orderID, func(o *order.Order) error { return o.Complete() })
	if err != nil {
		return nil, err
	}

	if s.invoiceGen != nil {
		if err := s.invoiceGen.GenerateForOrder(ctx, orderID); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// cancel voids an order. Inventory is never touched: stock deducted at
// approval time stays consumed so the movement ledger remains the
// authoritative record of what left the warehouse.
func (s *Service) cancel(ctx context.Context, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.Cancel(reason)
	})
}

// mutate is the common load/change/save path for transitions that do
// not touch other aggregates
func (s *Service) mutate(ctx context.Context, orderID uuid.UUID, change func(o *order.Order) error) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := change(o); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// publishEvents publishes pending domain events after the state change
// has been committed. Failures are logged, never propagated: downstream
// effects are best-effort.
func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
	}
	o.ClearDomainEvents()
}
