package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceNotificationHandler turns invoice lifecycle events into customer
// notifications. Same fire-and-forget contract as order notifications.
type InvoiceNotificationHandler struct {
	notifier       Notifier
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewInvoiceNotificationHandler creates a new handler for invoice lifecycle events
func NewInvoiceNotificationHandler(notifier Notifier, logger *zap.Logger) *InvoiceNotificationHandler {
	return &InvoiceNotificationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// WithIdempotency enables event deduplication via the given store
func (h *InvoiceNotificationHandler) WithIdempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) *InvoiceNotificationHandler {
	h.idempotency = store
	h.idempotencyCfg = cfg
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceNotificationHandler) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceGenerated,
		billing.EventTypeInvoiceOverdue,
	}
}

// Handle builds and dispatches the notification for an invoice event
func (h *InvoiceNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.alreadyProcessed(ctx, event) {
		return nil
	}

	var notification Notification
	switch e := event.(type) {
	case *billing.InvoiceGeneratedEvent:
		notification = Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     "A new invoice has been issued",
			Reference:   e.InvoiceNumber,
			Fields: map[string]string{
				"invoice_number": e.InvoiceNumber,
				"total_amount":   e.TotalAmount.StringFixed(3),
				"due_date":       e.DueDate.Format("2006-01-02"),
			},
			Channels: []string{"in_app", "email"},
		}
	case *billing.InvoiceOverdueEvent:
		notification = Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     "Invoice payment is overdue",
			Reference:   e.InvoiceNumber,
			Fields: map[string]string{
				"invoice_number": e.InvoiceNumber,
				"total_amount":   e.TotalAmount.StringFixed(3),
				"due_date":       e.DueDate.Format("2006-01-02"),
			},
			Channels: []string{"in_app", "email"},
		}
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Error("failed to send invoice notification",
			zap.String("event_type", event.EventType()),
			zap.String("reference", notification.Reference),
			zap.Error(err))
		// Don't return error - notification failure shouldn't fail the event handling
	}
	return nil
}

func (h *InvoiceNotificationHandler) alreadyProcessed(ctx context.Context, event shared.DomainEvent) bool {
	if h.idempotency == nil || !h.idempotencyCfg.Enabled {
		return false
	}
	fresh, err := h.idempotency.MarkProcessed(ctx, event.EventID().String(), h.idempotencyCfg.TTL)
	if err != nil {
		h.logger.Warn("idempotency check failed, proceeding anyway",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
		return false
	}
	return !fresh
}

// Ensure InvoiceNotificationHandler implements shared.EventHandler
var _ shared.EventHandler = (*InvoiceNotificationHandler)(nil)
