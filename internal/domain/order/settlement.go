package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement is the marketplace-reported payout breakdown for an order or order item.
// When present it takes precedence over locally estimated commissions.
type Settlement struct {
	ID                    uuid.UUID
	TenantID              uuid.UUID
	OrderID               uuid.UUID
	OrderItemID           *uuid.UUID
	SettlementDate        *time.Time
	SalesAmount           decimal.Decimal
	CommissionAmount      decimal.Decimal
	DeliveryFeeCommission decimal.Decimal
	SettlementAmount      decimal.Decimal
}

// Settlements is a set of settlement rows for one order
type Settlements []Settlement

// TotalCommission sums reported sales commissions
func (s Settlements) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, row := range s {
		total = total.Add(row.CommissionAmount)
	}
	return total
}

// TotalDeliveryFeeCommission sums reported delivery fee commissions
func (s Settlements) TotalDeliveryFeeCommission() decimal.Decimal {
	total := decimal.Zero
	for _, row := range s {
		total = total.Add(row.DeliveryFeeCommission)
	}
	return total
}
