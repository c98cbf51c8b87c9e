package erp

import (
	"testing"
	"time"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func fixedSerial() int { return 4321 }

// newTestOrder builds a COUPANG order with two items and a 3000 delivery fee
func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(uuid.New(), order.MarketplaceCoupang, "ABC123")
	require.NoError(t, err)

	orderedAt := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	o.OrderedAt = &orderedAt
	o.MarketplaceProductOrderID = "PO-1"
	o.BuyerName = "Kim"
	o.ReceiverName = "Lee"
	o.ReceiverPhone = "010-1234-5678"
	o.ReceiverAddress = "Seoul"
	o.TotalAmount = decimal.NewFromInt(30500)
	o.DeliveryFee = decimal.NewFromInt(3000)

	o.AddItem(order.OrderItem{
		ProductName:      "T-Shirt",
		OptionName:       "Red",
		Quantity:         2,
		UnitPrice:        decimal.NewFromInt(11000),
		TotalPrice:       decimal.NewFromInt(22000),
		ErpProductCode:   "P001",
		ErpWarehouseCode: "W01",
	})
	o.AddItem(order.OrderItem{
		ProductName: "Socks",
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(5500),
		TotalPrice:  decimal.NewFromInt(5500),
	})
	return o
}

func testSettlements(o *order.Order, commission, deliveryCommission int64) order.Settlements {
	return order.Settlements{{
		ID:                    uuid.New(),
		TenantID:              o.TenantID,
		OrderID:               o.ID,
		CommissionAmount:      decimal.NewFromInt(commission),
		DeliveryFeeCommission: decimal.NewFromInt(deliveryCommission),
	}}
}

func boolPtr(b bool) *bool { return &b }
