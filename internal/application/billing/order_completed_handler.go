package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
)

// OrderCompletedHandler generates the invoice when an order completes.
// Generation itself is idempotent (one invoice per order), the
// idempotency store just avoids redundant work on redelivered events.
type OrderCompletedHandler struct {
	invoiceService *Service
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewOrderCompletedHandler creates a new handler for order completed events
func NewOrderCompletedHandler(
	invoiceService *Service,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *OrderCompletedHandler {
	return &OrderCompletedHandler{
		invoiceService: invoiceService,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCompletedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderCompleted}
}

// Handle processes an OrderCompletedEvent by generating the invoice
func (h *OrderCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completedEvent, ok := event.(*order.CompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderCompleted, event.EventType())
	}

	if h.idempotency != nil && h.idempotencyCfg.Enabled {
		fresh, err := h.idempotency.MarkProcessed(ctx, event.EventID().String(), h.idempotencyCfg.TTL)
		if err != nil {
			h.logger.Warn("idempotency check failed, proceeding anyway",
				zap.String("event_id", event.EventID().String()),
				zap.Error(err))
		} else if !fresh {
			h.logger.Debug("event already processed, skipping",
				zap.String("event_id", event.EventID().String()))
			return nil
		}
	}

	h.logger.Info("generating invoice for completed order",
		zap.String("order_id", completedEvent.OrderID.String()),
		zap.String("order_number", completedEvent.OrderNumber))

	inv, err := h.invoiceService.GenerateForOrder(ctx, completedEvent.OrderID)
	if err != nil {
		h.logger.Error("invoice generation failed",
			zap.String("order_id", completedEvent.OrderID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to generate invoice: %w", err)
	}

	h.logger.Info("invoice generated",
		zap.String("order_id", completedEvent.OrderID.String()),
		zap.String("invoice_number", inv.InvoiceNumber))

	return nil
}

// Ensure OrderCompletedHandler implements EventHandler
var _ shared.EventHandler = (*OrderCompletedHandler)(nil)
