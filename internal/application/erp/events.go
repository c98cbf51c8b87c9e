package erp

import (
	"context"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// publishDocumentEvents publishes and clears the document's pending events.
// Publishing failures are logged; the document change is already persisted.
func publishDocumentEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, doc *erp.SalesDocument) {
	events := doc.GetDomainEvents()
	doc.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish document events",
			zap.String("tenant_id", doc.TenantID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}
}
