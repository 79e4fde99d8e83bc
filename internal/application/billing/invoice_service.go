package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
)

// maxSequenceRetries bounds how often invoice generation retries after
// losing a sequence allocation race.
const maxSequenceRetries = 3

// Service handles invoice operations
type Service struct {
	invoiceRepo    billing.InvoiceRepository
	orderRepo      order.Repository
	txScope        TransactionScope
	vatRatePercent decimal.Decimal
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new billing Service
func NewService(
	invoiceRepo billing.InvoiceRepository,
	orderRepo order.Repository,
	txScope TransactionScope,
	vatRatePercent decimal.Decimal,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoiceRepo:    invoiceRepo,
		orderRepo:      orderRepo,
		txScope:        txScope,
		vatRatePercent: vatRatePercent,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GenerateForOrder generates the invoice for a completed order.
// Generation is idempotent: if an invoice already exists for the order,
// it is returned unchanged. Each attempt allocates the sequence and
// inserts the invoice in one transaction, so a failed insert rolls the
// allocation back and committed sequences never have gaps. Sequence
// allocation races are retried a bounded number of times.
func (s *Service) GenerateForOrder(ctx context.Context, orderID uuid.UUID) (*InvoiceResponse, error) {
	existing, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		resp := ToInvoiceResponse(existing)
		return &resp, nil
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsCompleted() {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoices are only generated for completed orders")
	}

	totals, err := billing.ComputeTotals(o.TotalAmount, o.VATExempt, s.vatRatePercent)
	if err != nil {
		return nil, err
	}

	issueDate := s.now()
	year := issueDate.Year()

	var lastErr error
	for attempt := 0; attempt < maxSequenceRetries; attempt++ {
		var inv *billing.Invoice

		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			seq, err := repos.Allocator().Next(ctx, o.CustomerID, year)
			if err != nil {
				return err
			}

			number := billing.FormatInvoiceNumber(o.CustomerCode, year, seq)
			created, err := billing.NewInvoice(number, o.ID, o.CustomerID, o.CustomerCode, totals, issueDate)
			if err != nil {
				return err
			}

			if err := repos.InvoiceRepo().Save(ctx, created); err != nil {
				return err
			}

			inv = created
			return nil
		})
		if err != nil {
			if errors.Is(err, shared.ErrSequenceConflict) {
				lastErr = err
				s.logger.Warn("invoice sequence allocation conflict, retrying",
					zap.String("order_id", orderID.String()),
					zap.Int("attempt", attempt+1))
				continue
			}
			if errors.Is(err, shared.ErrDuplicateInvoice) {
				// Lost the race to a concurrent generation; the winner's
				// invoice is the canonical one.
				winner, findErr := s.invoiceRepo.FindByOrder(ctx, orderID)
				if findErr != nil {
					return nil, findErr
				}
				resp := ToInvoiceResponse(winner)
				return &resp, nil
			}
			return nil, err
		}

		s.publishEvents(ctx, inv)
		resp := ToInvoiceResponse(inv)
		return &resp, nil
	}

	return nil, lastErr
}

// GetByID retrieves an invoice by ID
func (s *Service) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByOrder retrieves the invoice generated for an order
func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.ErrNotFound
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves invoices with filtering and pagination
func (s *Service) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
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
		Filters:  make(map[string]interface{}),
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceResponses(invoices), total, nil
}

// MarkPaid records payment of an invoice
func (s *Service) MarkPaid(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkPaid(s.now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inv)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// SweepOverdue flags pending invoices whose due date has passed.
// Returns the number of invoices flagged.
func (s *Service) SweepOverdue(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	now := s.now()
	due, err := s.invoiceRepo.FindDueBefore(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for i := range due {
		inv := &due[i]
		if err := inv.MarkOverdue(now); err != nil {
			continue // Raced with a payment
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			s.logger.Error("failed to flag overdue invoice",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err))
			continue
		}
		s.publishEvents(ctx, inv)
		flagged++
	}

	return flagged, nil
}

func (s *Service) publishEvents(ctx context.Context, inv *billing.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range inv.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err))
		}
	}
	inv.ClearDomainEvents()
}
