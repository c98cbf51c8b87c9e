package order

// OrderStatus represents the fulfilment status of a marketplace order
type OrderStatus string

const (
	OrderStatusCollected         OrderStatus = "COLLECTED"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusReadyToShip       OrderStatus = "READY_TO_SHIP"
	OrderStatusShipping          OrderStatus = "SHIPPING"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusPurchaseConfirmed OrderStatus = "PURCHASE_CONFIRMED"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
	OrderStatusReturned          OrderStatus = "RETURNED"
	OrderStatusExchanged         OrderStatus = "EXCHANGED"
)

// ErpEligibleStatuses are the statuses in which an order gets a sales document
var ErpEligibleStatuses = []OrderStatus{OrderStatusShipping, OrderStatusDelivered}

// IsValid checks if the status is a valid value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCollected, OrderStatusConfirmed, OrderStatusReadyToShip,
		OrderStatusShipping, OrderStatusDelivered, OrderStatusPurchaseConfirmed,
		OrderStatusCancelled, OrderStatusReturned, OrderStatusExchanged:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// IsErpEligible reports whether orders in this status should have a sales document
func (s OrderStatus) IsErpEligible() bool {
	for _, eligible := range ErpEligibleStatuses {
		if s == eligible {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is expected
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPurchaseConfirmed, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}
