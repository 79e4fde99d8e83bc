package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

// testHandler records the events it receives
type testHandler struct {
	mu       sync.Mutex
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	h.mu.Lock()
	h.received = append(h.received, event)
	h.mu.Unlock()
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.types
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())
	return &e
}

func TestInMemoryEventBus_PublishAndSubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &testHandler{types: []string{"OrderApproved"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderApproved")))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderRejected")))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_MultipleHandlers(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	first := &testHandler{types: []string{"OrderCompleted"}}
	second := &testHandler{types: []string{"OrderCompleted"}}
	bus.Subscribe(first)
	bus.Subscribe(second)

	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCompleted")))

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &testHandler{types: []string{"OrderCompleted"}, err: errors.New("boom")}
	healthy := &testHandler{types: []string{"OrderCompleted"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCompleted")))

	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_HandlerPanicIsRecovered(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &testHandler{types: []string{"InvoiceGenerated"}, panics: true}
	healthy := &testHandler{types: []string{"InvoiceGenerated"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(ctx, newTestEvent("InvoiceGenerated"))
	})
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &testHandler{types: []string{"OrderApproved", "OrderRejected"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderApproved")))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderRejected")))

	assert.Equal(t, 0, handler.count())
}
