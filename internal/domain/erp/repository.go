package erp

import (
	"context"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErpConfigRepository persists tenant ERP connection settings
type ErpConfigRepository interface {
	// FindActive returns the tenant's active config or ErrConfigMissing
	FindActive(ctx context.Context, tenantID uuid.UUID) (*ErpConfig, error)

	// FindByIDForTenant returns a config, active or not, or ErrConfigMissing
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ErpConfig, error)

	// FindActiveTenantIDs lists tenants that have an active config
	FindActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)

	Save(ctx context.Context, config *ErpConfig) error
}

// SalesTemplateRepository persists sales templates
type SalesTemplateRepository interface {
	// FindActive returns the active template of a config or ErrTemplateMissing
	FindActive(ctx context.Context, tenantID, erpConfigID uuid.UUID) (*SalesTemplate, error)

	Save(ctx context.Context, template *SalesTemplate) error
}

// FieldMappingRepository persists field mapping rules
type FieldMappingRepository interface {
	// FindActiveByConfig returns the active rules of a config ordered by display order
	FindActiveByConfig(ctx context.Context, tenantID, erpConfigID uuid.UUID) (FieldMappings, error)

	Save(ctx context.Context, mapping *FieldMapping) error
}

// DocumentFilter narrows a document list query
type DocumentFilter struct {
	Status *DocumentStatus
	Page   shared.PageRequest
}

// SalesDocumentRepository persists sales documents. Documents are never deleted.
type SalesDocumentRepository interface {
	// FindByIDForTenant returns a document or ErrDocumentNotFound
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesDocument, error)

	// FindActiveByOrder returns the order's non-cancelled document or ErrDocumentNotFound
	FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesDocument, error)

	// ExistsActiveByOrder reports whether the order has a non-cancelled document
	ExistsActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (bool, error)

	// FindByIDs returns the tenant's documents among ids, oldest first
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*SalesDocument, error)

	// FindByStatuses returns the tenant's documents in the given statuses, oldest first
	FindByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []DocumentStatus) ([]*SalesDocument, error)

	// FindPage lists documents newest first
	FindPage(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]*SalesDocument, int64, error)

	// CountByStatus counts the tenant's documents per status
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[DocumentStatus]int64, error)

	// Create inserts a new document. It returns ErrDocumentExists when the
	// order already has a non-cancelled document.
	Create(ctx context.Context, doc *SalesDocument) error

	// Update saves state changes using optimistic locking on Version
	Update(ctx context.Context, doc *SalesDocument) error

	// Replace updates a cancelled document and creates its replacement atomically.
	// Neither change is kept when either fails.
	Replace(ctx context.Context, cancelled, replacement *SalesDocument) error
}

// OrderLocker serializes document generation, sending and cancelling per order
type OrderLocker interface {
	// LockOrder acquires the order lock or returns ErrGenerationInProgress
	LockOrder(ctx context.Context, tenantID, orderID uuid.UUID) (release func(context.Context) error, err error)
}
