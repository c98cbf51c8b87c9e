package erp

import (
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DeliveryCommissionRule is the fallback delivery commission of one marketplace:
// Rate is a fraction of the delivery fee, Flat a fixed amount. Rate wins when both are set.
type DeliveryCommissionRule struct {
	Rate decimal.Decimal
	Flat decimal.Decimal
}

// DeliveryCommissionPolicy holds per-marketplace fallbacks used when neither
// settlements nor a stored estimate provide the delivery commission.
type DeliveryCommissionPolicy struct {
	Rules map[order.MarketplaceType]DeliveryCommissionRule
}

// DefaultDeliveryCommissionPolicy returns the long-standing fallbacks:
// COUPANG 3.3% of the fee, NAVER a flat 67, others zero.
func DefaultDeliveryCommissionPolicy() DeliveryCommissionPolicy {
	return DeliveryCommissionPolicy{
		Rules: map[order.MarketplaceType]DeliveryCommissionRule{
			order.MarketplaceCoupang: {Rate: decimal.RequireFromString("0.033")},
			order.MarketplaceNaver:   {Flat: decimal.NewFromInt(67)},
		},
	}
}

// Fallback computes the policy amount for a marketplace and delivery fee
func (p DeliveryCommissionPolicy) Fallback(marketplace order.MarketplaceType, deliveryFee decimal.Decimal) decimal.Decimal {
	if deliveryFee.IsZero() {
		return decimal.Zero
	}
	rule, ok := p.Rules[marketplace]
	if !ok {
		return decimal.Zero
	}
	if !rule.Rate.IsZero() {
		return deliveryFee.Mul(rule.Rate).Round(0)
	}
	return rule.Flat
}

// SalesCommission returns the sales commission of an order, preferring in turn:
// reported settlement commissions, item commission rates, and
// total − expected settlement − estimated delivery commission.
func SalesCommission(o *order.Order, settlements order.Settlements) decimal.Decimal {
	if reported := settlements.TotalCommission(); reported.IsPositive() {
		return reported
	}

	fromItems := decimal.Zero
	for _, item := range o.Items {
		if item.CommissionRate == nil {
			continue
		}
		fromItems = fromItems.Add(item.TotalPrice.Mul(*item.CommissionRate).Div(hundred).Round(0))
	}
	if fromItems.IsPositive() {
		return fromItems
	}

	if o.ExpectedSettlementAmount.IsPositive() {
		derived := o.TotalAmount.Sub(o.ExpectedSettlementAmount).Sub(o.EstimatedDeliveryCommission)
		if derived.IsPositive() {
			return derived
		}
	}
	return decimal.Zero
}

// DeliveryCommission returns the delivery fee commission of an order.
// It is zero whenever the order has no delivery fee.
func DeliveryCommission(o *order.Order, settlements order.Settlements, policy DeliveryCommissionPolicy) decimal.Decimal {
	if o.DeliveryFee.IsZero() {
		return decimal.Zero
	}
	if reported := settlements.TotalDeliveryFeeCommission(); reported.IsPositive() {
		return reported
	}
	if o.EstimatedDeliveryCommission.IsPositive() {
		return o.EstimatedDeliveryCommission
	}
	return policy.Fallback(o.MarketplaceType, o.DeliveryFee)
}
