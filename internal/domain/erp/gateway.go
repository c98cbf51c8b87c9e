package erp

import (
	"context"
	"fmt"
	"sort"

	"github.com/erpbridge/backend/internal/domain/shared"
)

// SendResult is the outcome of submitting one document to an ERP
type SendResult struct {
	Success       bool
	ErpDocumentID string
	ErrorMessage  string
}

// SendSucceeded creates a successful result
func SendSucceeded(erpDocumentID string) SendResult {
	return SendResult{Success: true, ErpDocumentID: erpDocumentID}
}

// SendFailed creates a failed result
func SendFailed(format string, args ...any) SendResult {
	return SendResult{Success: false, ErrorMessage: fmt.Sprintf(format, args...)}
}

// Gateway submits sales document lines to one kind of external ERP.
// Transport and protocol failures are reported in the SendResult, not as panics.
type Gateway interface {
	ErpType() ErpType
	SendSalesDocument(ctx context.Context, config *ErpConfig, lines Lines) SendResult
}

// GatewayRegistry looks up gateways by ERP type.
// It is built once at startup and read-only afterwards.
type GatewayRegistry struct {
	gateways map[ErpType]Gateway
}

// NewGatewayRegistry registers the given gateways; a later gateway replaces an earlier one of the same type
func NewGatewayRegistry(gateways ...Gateway) *GatewayRegistry {
	r := &GatewayRegistry{gateways: make(map[ErpType]Gateway, len(gateways))}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.ErpType()] = g
		}
	}
	return r
}

// Get returns the gateway for an ERP type
func (r *GatewayRegistry) Get(erpType ErpType) (Gateway, error) {
	g, ok := r.gateways[erpType]
	if !ok {
		return nil, shared.NewDomainError(CodeGatewayNotRegistered,
			fmt.Sprintf("No ERP gateway registered for ERP type: %s", erpType))
	}
	return g, nil
}

// Types returns the registered ERP types in sorted order
func (r *GatewayRegistry) Types() []ErpType {
	types := make([]ErpType, 0, len(r.gateways))
	for t := range r.gateways {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
