package erpgateway

import (
	"context"

	"github.com/erpbridge/backend/internal/domain/erp"
)

// IcountGateway is registered for ICOUNT configs and rejects every document
type IcountGateway struct{}

// NewIcountGateway creates the ICOUNT gateway
func NewIcountGateway() *IcountGateway {
	return &IcountGateway{}
}

// ErpType returns ICOUNT
func (g *IcountGateway) ErpType() erp.ErpType {
	return erp.ErpTypeIcount
}

// SendSalesDocument always fails
func (g *IcountGateway) SendSalesDocument(_ context.Context, _ *erp.ErpConfig, _ erp.Lines) erp.SendResult {
	return erp.SendFailed("ICOUNT sales document upload is not supported")
}

// Ensure IcountGateway implements erp.Gateway
var _ erp.Gateway = (*IcountGateway)(nil)
