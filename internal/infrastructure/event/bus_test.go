package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testHandler records the events it receives
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func shippedOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(uuid.New(), order.MarketplaceCoupang, "CP-1")
	require.NoError(t, err)
	return o
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	o := shippedOrder(t)

	shipped := newTestHandler(order.EventTypeOrderShipped)
	bus.Subscribe(shipped)
	statusChanged := newTestHandler(order.EventTypeOrderStatusChanged)
	bus.Subscribe(statusChanged)

	require.NoError(t, o.ChangeStatus(order.OrderStatusShipping))
	require.NoError(t, bus.Publish(context.Background(), o.GetDomainEvents()...))

	require.Len(t, shipped.getHandled(), 1)
	event, ok := shipped.getHandled()[0].(*order.OrderShippedEvent)
	require.True(t, ok)
	assert.Equal(t, o.ID, event.OrderID)
	assert.Equal(t, o.TenantID, event.TenantID())
	assert.Len(t, statusChanged.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	typed := newTestHandler(order.EventTypeOrderShipped)
	wildcard := newTestHandler()
	bus.Subscribe(typed)
	bus.Subscribe(wildcard)

	o := shippedOrder(t)
	require.NoError(t, bus.Publish(context.Background(),
		order.NewOrderShippedEvent(o),
		order.NewOrderStatusChangedEvent(o, order.OrderStatusCollected),
	))

	assert.Len(t, typed.getHandled(), 1)
	assert.Len(t, wildcard.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_IsolatesFailingHandlers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler(order.EventTypeOrderShipped)
	failing.err = errors.New("generation failed")
	panicking := newTestHandler(order.EventTypeOrderShipped)
	panicking.panicWith = "nil map"
	healthy := newTestHandler(order.EventTypeOrderShipped)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), order.NewOrderShippedEvent(shippedOrder(t)))

	require.NoError(t, err)
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, panicking.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_SubscribeTwice(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(order.EventTypeOrderShipped)
	bus.Subscribe(handler)
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), order.NewOrderShippedEvent(shippedOrder(t))))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(order.EventTypeOrderShipped)
	bus.Subscribe(handler)

	o := shippedOrder(t)
	require.NoError(t, bus.Publish(context.Background(), order.NewOrderShippedEvent(o)))
	bus.Unsubscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), order.NewOrderShippedEvent(o)))

	assert.Len(t, handler.getHandled(), 1)
	assert.Empty(t, bus.registry.EventTypes())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(order.EventTypeOrderShipped)
	bus.Subscribe(handler)
	ctx := context.Background()
	event := order.NewOrderShippedEvent(shippedOrder(t))

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, event))

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(ctx, event), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, event))
	assert.Len(t, handler.getHandled(), 2)
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(a, "A", "B")
	registry.Register(b, "B")
	registry.Register(wildcard)

	assert.Equal(t, []shared.EventHandler{a, wildcard}, registry.GetHandlers("A"))
	assert.Equal(t, []shared.EventHandler{a, b, wildcard}, registry.GetHandlers("B"))
	assert.Equal(t, []shared.EventHandler{wildcard}, registry.GetHandlers("C"))
	assert.ElementsMatch(t, []string{"A", "B"}, registry.EventTypes())

	registry.Unregister(a)
	assert.Equal(t, []shared.EventHandler{wildcard}, registry.GetHandlers("A"))
	assert.ElementsMatch(t, []string{"B"}, registry.EventTypes())
}
