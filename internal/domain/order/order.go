package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order errors
var (
	ErrOrderNotFound = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
)

// Order is a marketplace order as collected from the sales channel
type Order struct {
	shared.TenantAggregateRoot
	MarketplaceType           MarketplaceType
	MarketplaceOrderID        string
	MarketplaceProductOrderID string
	Status                    OrderStatus
	OrderedAt                 *time.Time
	TotalAmount               decimal.Decimal
	DeliveryFee               decimal.Decimal

	// ExpectedSettlementAmount is the payout the marketplace announced, zero when unknown
	ExpectedSettlementAmount decimal.Decimal
	// EstimatedDeliveryCommission is stored at collection time for channels that report it
	EstimatedDeliveryCommission decimal.Decimal

	BuyerName       string
	BuyerPhone      string
	ReceiverName    string
	ReceiverPhone   string
	ReceiverAddress string

	Items []OrderItem

	ErpSynced     bool
	ErpDocumentID string
}

// OrderItem is one product line of a marketplace order
type OrderItem struct {
	ID                   uuid.UUID
	OrderID              uuid.UUID
	ProductName          string
	OptionName           string
	Quantity             int
	UnitPrice            decimal.Decimal
	TotalPrice           decimal.Decimal
	MarketplaceProductID string
	MarketplaceSku       string

	// ErpProductCode is the ERP item code assigned through product mapping
	ErpProductCode string
	// ErpWarehouseCode is the ERP warehouse assigned through product mapping
	ErpWarehouseCode string

	// CommissionRate is a percentage (e.g. 10.8); nil when the channel did not report one
	CommissionRate           *decimal.Decimal
	ExpectedSettlementAmount decimal.Decimal
}

// NewOrder creates a new order in COLLECTED status
func NewOrder(tenantID uuid.UUID, marketplace MarketplaceType, marketplaceOrderID string) (*Order, error) {
	if !marketplace.IsValid() {
		return nil, shared.NewDomainError("INVALID_MARKETPLACE", fmt.Sprintf("Unknown marketplace: %s", marketplace))
	}
	if strings.TrimSpace(marketplaceOrderID) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Marketplace order ID cannot be empty")
	}

	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		MarketplaceType:     marketplace,
		MarketplaceOrderID:  marketplaceOrderID,
		Status:              OrderStatusCollected,
		TotalAmount:         decimal.Zero,
		DeliveryFee:         decimal.Zero,
		Items:               make([]OrderItem, 0),
	}, nil
}

// AddItem appends an item to the order
func (o *Order) AddItem(item OrderItem) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.Touch()
}

// ChangeStatus moves the order to a new fulfilment status.
// Entering SHIPPING raises OrderShippedEvent, which drives document generation.
func (o *Order) ChangeStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid order status: %s", status))
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order in %s status", o.Status))
	}
	if o.Status == status {
		return nil
	}

	previous := o.Status
	o.Status = status
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	if status == OrderStatusShipping {
		o.AddDomainEvent(NewOrderShippedEvent(o))
	}
	return nil
}

// MarkErpSynced records that the order's sales document reached the ERP
func (o *Order) MarkErpSynced(erpDocumentID string) {
	o.ErpSynced = true
	o.ErpDocumentID = erpDocumentID
	o.Touch()
}

// DefaultWarehouseCode returns the first non-blank ERP warehouse code among the items
func (o *Order) DefaultWarehouseCode() string {
	for _, item := range o.Items {
		if strings.TrimSpace(item.ErpWarehouseCode) != "" {
			return item.ErpWarehouseCode
		}
	}
	return ""
}

// OrderDate returns the ordered-at date, or now when the channel did not report one
func (o *Order) OrderDate() time.Time {
	if o.OrderedAt != nil {
		return *o.OrderedAt
	}
	return time.Now()
}

// Description returns "name / option", or just the name when there is no option
func (i OrderItem) Description() string {
	if strings.TrimSpace(i.OptionName) == "" {
		return i.ProductName
	}
	return i.ProductName + " / " + i.OptionName
}
