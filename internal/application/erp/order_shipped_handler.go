package erp

import (
	"context"
	"fmt"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderShippedHandler generates the ERP sales document when an order ships.
// Generation problems are logged and never fail the publisher.
//
// The event is raised by order.Order.ChangeStatus. Nothing in this service
// changes order status; the order collection process that owns the order
// lifecycle saves the order and publishes its events to the bus this handler
// is subscribed to.
type OrderShippedHandler struct {
	generation *GenerationService
	logger     *zap.Logger
}

// NewOrderShippedHandler creates a new handler for order shipped events
func NewOrderShippedHandler(generation *GenerationService, logger *zap.Logger) *OrderShippedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderShippedHandler{
		generation: generation,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderShippedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderShipped}
}

// Handle processes an OrderShippedEvent
func (h *OrderShippedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	shipped, ok := event.(*order.OrderShippedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderShipped),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderShipped, event.EventType())
	}

	h.logger.Debug("processing order shipped event",
		zap.String("tenant_id", shipped.TenantID().String()),
		zap.String("order_id", shipped.OrderID.String()),
		zap.String("marketplace_order_id", shipped.MarketplaceOrderID),
	)

	h.generation.TryGenerate(ctx, shipped.TenantID(), shipped.OrderID)
	return nil
}

// Ensure OrderShippedHandler implements shared.EventHandler
var _ shared.EventHandler = (*OrderShippedHandler)(nil)
