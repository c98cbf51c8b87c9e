package erp

import (
	"context"
	"fmt"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentQueryService serves read-only document lookups
type DocumentQueryService struct {
	documentRepo erp.SalesDocumentRepository
}

// NewDocumentQueryService creates a new DocumentQueryService
func NewDocumentQueryService(documentRepo erp.SalesDocumentRepository) *DocumentQueryService {
	return &DocumentQueryService{documentRepo: documentRepo}
}

// List returns one page of the tenant's documents, newest first
func (s *DocumentQueryService) List(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) (shared.Paginated[*erp.SalesDocument], error) {
	filter.Page = filter.Page.Normalize()
	if filter.Status != nil && !filter.Status.IsValid() {
		return shared.Paginated[*erp.SalesDocument]{}, erp.ErrInvalidDocumentStatus
	}

	docs, total, err := s.documentRepo.FindPage(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[*erp.SalesDocument]{}, fmt.Errorf("failed to list documents: %w", err)
	}
	return shared.NewPaginated(docs, total, filter.Page), nil
}

// Get returns one of the tenant's documents or ErrDocumentNotFound
func (s *DocumentQueryService) Get(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	return s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
}
