package order

import (
	"context"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines persistence for marketplace orders.
// Every method takes the tenant ID explicitly; implementations must
// filter on it and never resolve a tenant from ambient state.
type OrderRepository interface {
	// FindByIDForTenant finds an order with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindWithoutActiveDocument lists orders in the given statuses that have no
	// non-cancelled ERP sales document, newest first
	FindWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID, statuses []OrderStatus, page shared.PageRequest) ([]Order, error)

	// CountWithoutActiveDocument counts the orders FindWithoutActiveDocument would return
	CountWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID, statuses []OrderStatus) (int64, error)

	// MarkErpSynced sets the ERP synced flag and external document ID
	MarkErpSynced(ctx context.Context, tenantID, orderID uuid.UUID, erpDocumentID string) error

	// Save creates or updates an order and its items
	Save(ctx context.Context, order *Order) error
}

// SettlementRepository reads marketplace settlement rows
type SettlementRepository interface {
	// FindByOrder returns all settlement rows for an order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (Settlements, error)

	// Save creates or updates a settlement row
	Save(ctx context.Context, settlement *Settlement) error
}
