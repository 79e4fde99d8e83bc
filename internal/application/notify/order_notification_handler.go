package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
)

// OrderNotificationHandler turns order lifecycle events into customer
// notifications. Delivery is fire-and-forget: a notification failure is
// logged but never fails the event handling, and the originating state
// change has already been committed by the time this handler runs.
type OrderNotificationHandler struct {
	notifier       Notifier
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewOrderNotificationHandler creates a new handler for order lifecycle events
func NewOrderNotificationHandler(notifier Notifier, logger *zap.Logger) *OrderNotificationHandler {
	return &OrderNotificationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// WithIdempotency enables event deduplication via the given store
func (h *OrderNotificationHandler) WithIdempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) *OrderNotificationHandler {
	h.idempotency = store
	h.idempotencyCfg = cfg
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderNotificationHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderApproved,
		order.EventTypeOrderRejected,
		order.EventTypeOrderDelivered,
		order.EventTypeOrderCompleted,
		order.EventTypeOrderCancelled,
	}
}

// Handle builds and dispatches the notification for an order event
func (h *OrderNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.alreadyProcessed(ctx, event) {
		return nil
	}

	notification, err := h.buildNotification(event)
	if err != nil {
		return err
	}

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Error("failed to send order notification",
			zap.String("event_type", event.EventType()),
			zap.String("reference", notification.Reference),
			zap.Error(err))
		// Don't return error - notification failure shouldn't fail the event handling
	}
	return nil
}

func (h *OrderNotificationHandler) alreadyProcessed(ctx context.Context, event shared.DomainEvent) bool {
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

func (h *OrderNotificationHandler) buildNotification(event shared.DomainEvent) (Notification, error) {
	channels := []string{"in_app"}

	switch e := event.(type) {
	case *order.ApprovedEvent:
		subject := "Your order has been approved"
		fields := map[string]string{"order_number": e.OrderNumber}
		if e.AutoApproved {
			fields["auto_approved"] = "true"
		}
		return Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     subject,
			Reference:   e.OrderNumber,
			Fields:      fields,
			Channels:    channels,
		}, nil

	case *order.RejectedEvent:
		return Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     "Your order has been rejected",
			Reference:   e.OrderNumber,
			Fields: map[string]string{
				"order_number": e.OrderNumber,
				"reason":       e.Reason,
			},
			Channels: channels,
		}, nil

	case *order.DeliveredEvent:
		return Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     "Your order has been delivered",
			Reference:   e.OrderNumber,
			Fields:      map[string]string{"order_number": e.OrderNumber},
			Channels:    channels,
		}, nil

	case *order.CompletedEvent:
		return Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     "Your order is complete",
			Reference:   e.OrderNumber,
			Fields: map[string]string{
				"order_number": e.OrderNumber,
				"total_amount": e.TotalAmount.StringFixed(3),
			},
			Channels: channels,
		}, nil

	case *order.CancelledEvent:
		return Notification{
			RecipientID: e.CustomerID,
			EventType:   e.EventType(),
			Subject:     "Your order has been cancelled",
			Reference:   e.OrderNumber,
			Fields: map[string]string{
				"order_number": e.OrderNumber,
				"reason":       e.CancelReason,
			},
			Channels: channels,
		}, nil

	default:
		return Notification{}, fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// Ensure OrderNotificationHandler implements shared.EventHandler
var _ shared.EventHandler = (*OrderNotificationHandler)(nil)
