package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/order"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// recordingNotifier captures sent notifications for assertions
type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// memoryIdempotencyStore is an in-memory IdempotencyStore for tests
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{seen: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *memoryIdempotencyStore) Close() error {
	return nil
}

func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ORD-2026-00042", uuid.New(), "Test Customer", "ACME", false)
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), "Widget", "SKU-001", decimal.NewFromInt(2), valueobject.NewMoneyOMRFromFloat(10))
	require.NoError(t, err)
	approver := uuid.New()
	require.NoError(t, o.Approve(&approver))
	require.NoError(t, o.Start())
	require.NoError(t, o.MarkDelivered())
	return o
}

func TestOrderNotificationHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies customer on approval", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewOrderNotificationHandler(notifier, zap.NewNop())

		o, err := order.NewOrder("ORD-2026-00001", uuid.New(), "Test Customer", "ACME", false)
		require.NoError(t, err)
		event := order.NewApprovedEvent(o, nil)

		require.NoError(t, handler.Handle(ctx, event))

		sent := notifier.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, o.CustomerID, sent[0].RecipientID)
		assert.Equal(t, order.EventTypeOrderApproved, sent[0].EventType)
		assert.Equal(t, "ORD-2026-00001", sent[0].Reference)
		assert.Equal(t, "true", sent[0].Fields["auto_approved"])
	})

	t.Run("includes rejection reason", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewOrderNotificationHandler(notifier, zap.NewNop())

		o, err := order.NewOrder("ORD-2026-00002", uuid.New(), "Test Customer", "ACME", false)
		require.NoError(t, err)
		approver := uuid.New()
		event := order.NewRejectedEvent(o, &approver, "over budget")

		require.NoError(t, handler.Handle(ctx, event))

		sent := notifier.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, "over budget", sent[0].Fields["reason"])
	})

	t.Run("notifier failure does not fail handling", func(t *testing.T) {
		notifier := &recordingNotifier{err: errors.New("smtp down")}
		handler := NewOrderNotificationHandler(notifier, zap.NewNop())

		o := deliveredOrder(t)
		event := order.NewDeliveredEvent(o)

		assert.NoError(t, handler.Handle(ctx, event))
	})

	t.Run("duplicate events are skipped with idempotency enabled", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewOrderNotificationHandler(notifier, zap.NewNop()).
			WithIdempotency(newMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig())

		o := deliveredOrder(t)
		event := order.NewDeliveredEvent(o)

		require.NoError(t, handler.Handle(ctx, event))
		require.NoError(t, handler.Handle(ctx, event))

		assert.Len(t, notifier.notifications(), 1)
	})

	t.Run("rejects events outside its subscription", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewOrderNotificationHandler(notifier, zap.NewNop())

		o, err := order.NewOrder("ORD-2026-00003", uuid.New(), "Test Customer", "ACME", false)
		require.NoError(t, err)
		event := order.NewCreatedEvent(o)

		assert.Error(t, handler.Handle(ctx, event))
		assert.Empty(t, notifier.notifications())
	})
}

func TestInvoiceNotificationHandler_Handle(t *testing.T) {
	ctx := context.Background()

	newInvoice := func(t *testing.T) *billing.Invoice {
		t.Helper()
		totals, err := billing.ComputeTotals(decimal.NewFromInt(100), false, billing.DefaultVATRatePercent)
		require.NoError(t, err)
		inv, err := billing.NewInvoice("ACME-INV-2026-0001", uuid.New(), uuid.New(), "ACME", totals, time.Now())
		require.NoError(t, err)
		return inv
	}

	t.Run("notifies customer on invoice generation", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewInvoiceNotificationHandler(notifier, zap.NewNop())

		inv := newInvoice(t)
		event := billing.NewInvoiceGeneratedEvent(inv)

		require.NoError(t, handler.Handle(ctx, event))

		sent := notifier.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, inv.CustomerID, sent[0].RecipientID)
		assert.Equal(t, "ACME-INV-2026-0001", sent[0].Reference)
		assert.Equal(t, "105.000", sent[0].Fields["total_amount"])
		assert.Contains(t, sent[0].Channels, "email")
	})

	t.Run("notifies customer on overdue", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewInvoiceNotificationHandler(notifier, zap.NewNop())

		inv := newInvoice(t)
		event := billing.NewInvoiceOverdueEvent(inv)

		require.NoError(t, handler.Handle(ctx, event))

		sent := notifier.notifications()
		require.Len(t, sent, 1)
		assert.Equal(t, billing.EventTypeInvoiceOverdue, sent[0].EventType)
	})
}
