package main

import (
	"fmt"
	"strings"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/infrastructure/config"
	"github.com/erpbridge/backend/internal/infrastructure/erpgateway"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// deliveryCommissionPolicy builds the fallback delivery commission rules.
// Viper lowercases map keys, so marketplace names are uppercased here.
func deliveryCommissionPolicy(cfg config.CommissionConfig) (erp.DeliveryCommissionPolicy, error) {
	policy := erp.DeliveryCommissionPolicy{Rules: make(map[order.MarketplaceType]erp.DeliveryCommissionRule)}

	for name, raw := range cfg.DeliveryRates {
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return policy, fmt.Errorf("commission.delivery_rates.%s: %w", name, err)
		}
		key := order.MarketplaceType(strings.ToUpper(name))
		rule := policy.Rules[key]
		rule.Rate = rate
		policy.Rules[key] = rule
	}
	for name, raw := range cfg.DeliveryFlats {
		flat, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return policy, fmt.Errorf("commission.delivery_flats.%s: %w", name, err)
		}
		key := order.MarketplaceType(strings.ToUpper(name))
		rule := policy.Rules[key]
		rule.Flat = flat
		policy.Rules[key] = rule
	}
	return policy, nil
}

// newGatewayRegistry registers one gateway per supported ERP type
func newGatewayRegistry(cfg config.EcountConfig, log *zap.Logger) *erp.GatewayRegistry {
	return erp.NewGatewayRegistry(
		erpgateway.NewEcountGateway(erpgateway.EcountConfig{
			ZoneURL:       cfg.ZoneURL,
			BaseURLFormat: cfg.BaseURLFormat,
			LanType:       cfg.LanType,
			Timeout:       cfg.Timeout,
		}, log),
		erpgateway.NewIcountGateway(),
	)
}
