package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	tenantID := uuid.New()

	o, err := NewOrder(tenantID, MarketplaceNaver, "2024031500001")
	require.NoError(t, err)
	assert.Equal(t, tenantID, o.TenantID)
	assert.Equal(t, OrderStatusCollected, o.Status)
	assert.True(t, o.DeliveryFee.IsZero())

	_, err = NewOrder(tenantID, MarketplaceType("AMAZON"), "1")
	assert.Error(t, err)

	_, err = NewOrder(tenantID, MarketplaceNaver, " ")
	assert.Error(t, err)
}

func TestOrder_ChangeStatus(t *testing.T) {
	o, err := NewOrder(uuid.New(), MarketplaceCoupang, "A1")
	require.NoError(t, err)

	require.NoError(t, o.ChangeStatus(OrderStatusReadyToShip))
	require.Len(t, o.GetDomainEvents(), 1)

	o.ClearDomainEvents()
	require.NoError(t, o.ChangeStatus(OrderStatusShipping))
	events := o.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeOrderStatusChanged, events[0].EventType())
	assert.Equal(t, EventTypeOrderShipped, events[1].EventType())
	assert.Equal(t, o.TenantID, events[1].TenantID())

	o.ClearDomainEvents()
	require.NoError(t, o.ChangeStatus(OrderStatusShipping))
	assert.Empty(t, o.GetDomainEvents())

	require.NoError(t, o.ChangeStatus(OrderStatusCancelled))
	assert.Error(t, o.ChangeStatus(OrderStatusDelivered))
	assert.Error(t, o.ChangeStatus(OrderStatus("LOST")))
}

func TestOrder_Items(t *testing.T) {
	o, err := NewOrder(uuid.New(), MarketplaceCoupang, "A1")
	require.NoError(t, err)

	o.AddItem(OrderItem{ProductName: "Cup", Quantity: 1, TotalPrice: decimal.NewFromInt(1000)})
	o.AddItem(OrderItem{ProductName: "Plate", OptionName: "White", ErpWarehouseCode: "W02"})
	o.AddItem(OrderItem{ProductName: "Fork", ErpWarehouseCode: "W03"})

	assert.Equal(t, o.ID, o.Items[0].OrderID)
	assert.NotEqual(t, uuid.Nil, o.Items[0].ID)
	assert.Equal(t, "W02", o.DefaultWarehouseCode())
	assert.Equal(t, "Cup", o.Items[0].Description())
	assert.Equal(t, "Plate / White", o.Items[1].Description())
}

func TestOrderStatus_ErpEligible(t *testing.T) {
	assert.True(t, OrderStatusShipping.IsErpEligible())
	assert.True(t, OrderStatusDelivered.IsErpEligible())
	assert.False(t, OrderStatusCollected.IsErpEligible())
	assert.False(t, OrderStatusCancelled.IsErpEligible())
}

func TestSettlements_Totals(t *testing.T) {
	s := Settlements{
		{CommissionAmount: decimal.NewFromInt(100), DeliveryFeeCommission: decimal.NewFromInt(10)},
		{CommissionAmount: decimal.NewFromInt(250)},
	}
	assert.Equal(t, "350", s.TotalCommission().String())
	assert.Equal(t, "10", s.TotalDeliveryFeeCommission().String())
	assert.True(t, Settlements(nil).TotalCommission().IsZero())
}

func TestMarketplaceType_DisplayName(t *testing.T) {
	assert.NotEqual(t, "NAVER", MarketplaceNaver.DisplayName())
	assert.Equal(t, "AMAZON", MarketplaceType("AMAZON").DisplayName())
}
