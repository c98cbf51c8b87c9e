package order

import (
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderShipped       = "OrderShipped"
)

// OrderStatusChangedEvent is raised on every fulfilment status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID       `json:"order_id"`
	MarketplaceOrderID string          `json:"marketplace_order_id"`
	MarketplaceType    MarketplaceType `json:"marketplace_type"`
	PreviousStatus     OrderStatus     `json:"previous_status"`
	Status             OrderStatus     `json:"status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:            o.ID,
		MarketplaceOrderID: o.MarketplaceOrderID,
		MarketplaceType:    o.MarketplaceType,
		PreviousStatus:     previous,
		Status:             o.Status,
	}
}

// OrderShippedEvent is raised when an order enters SHIPPING
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID       `json:"order_id"`
	MarketplaceOrderID string          `json:"marketplace_order_id"`
	MarketplaceType    MarketplaceType `json:"marketplace_type"`
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeOrderShipped, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:            o.ID,
		MarketplaceOrderID: o.MarketplaceOrderID,
		MarketplaceType:    o.MarketplaceType,
	}
}
