package erp

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/erpbridge/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DispatchService sends sales documents to the tenant's ERP and records the outcome
type DispatchService struct {
	documentRepo   erp.SalesDocumentRepository
	configRepo     erp.ErpConfigRepository
	orderRepo      order.OrderRepository
	gateways       *erp.GatewayRegistry
	locker         erp.OrderLocker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// DispatchServiceConfig holds the collaborators of DispatchService
type DispatchServiceConfig struct {
	DocumentRepo erp.SalesDocumentRepository
	ConfigRepo   erp.ErpConfigRepository
	OrderRepo    order.OrderRepository
	Gateways     *erp.GatewayRegistry
	// Locker serializes sends and cancels with generation on the same order.
	// Without it concurrent sends of one document can both reach the ERP.
	Locker         erp.OrderLocker
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(config DispatchServiceConfig) *DispatchService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gateways := config.Gateways
	if gateways == nil {
		gateways = erp.NewGatewayRegistry()
	}
	return &DispatchService{
		documentRepo:   config.DocumentRepo,
		configRepo:     config.ConfigRepo,
		orderRepo:      config.OrderRepo,
		gateways:       gateways,
		locker:         config.Locker,
		eventPublisher: config.EventPublisher,
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for document events
func (s *DispatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SendOne sends one document. Gateway failures end up in the document's
// FAILED state; only lookup, state and persistence errors are returned.
func (s *DispatchService) SendOne(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.CanRetry() {
		return nil, notRetryable(doc)
	}

	doc, _, err = s.send(ctx, doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// BatchItemResult is the outcome of one document within a batch send
type BatchItemResult struct {
	DocumentID    uuid.UUID          `json:"document_id"`
	OrderID       uuid.UUID          `json:"order_id"`
	Success       bool               `json:"success"`
	Status        erp.DocumentStatus `json:"status"`
	ErpDocumentID string             `json:"erp_document_id,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// BatchSendResult aggregates a batch send
type BatchSendResult struct {
	TotalCount   int               `json:"total_count"`
	SuccessCount int               `json:"success_count"`
	FailCount    int               `json:"fail_count"`
	Results      []BatchItemResult `json:"results"`
}

// SendAllPending sends every PENDING and FAILED document of the tenant
func (s *DispatchService) SendAllPending(ctx context.Context, tenantID uuid.UUID) (*BatchSendResult, error) {
	docs, err := s.documentRepo.FindByStatuses(ctx, tenantID,
		[]erp.DocumentStatus{erp.DocumentStatusPending, erp.DocumentStatusFailed})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	return s.sendBatch(ctx, tenantID, docs), nil
}

// SendSelected sends the selected documents. Unknown IDs and documents
// that can no longer be sent are skipped and not counted.
func (s *DispatchService) SendSelected(ctx context.Context, tenantID uuid.UUID, documentIDs []uuid.UUID) (*BatchSendResult, error) {
	docs, err := s.documentRepo.FindByIDs(ctx, tenantID, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected documents: %w", err)
	}

	retryable := make([]*erp.SalesDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.CanRetry() {
			retryable = append(retryable, doc)
			continue
		}
		s.logger.Debug("skipping document that cannot be sent",
			zap.String("tenant_id", tenantID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.String("status", doc.Status.String()),
		)
	}
	return s.sendBatch(ctx, tenantID, retryable), nil
}

// SendPending sends only PENDING documents; used by the auto batch
func (s *DispatchService) SendPending(ctx context.Context, tenantID uuid.UUID) (*BatchSendResult, error) {
	docs, err := s.documentRepo.FindByStatuses(ctx, tenantID, []erp.DocumentStatus{erp.DocumentStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	return s.sendBatch(ctx, tenantID, docs), nil
}

// Cancel cancels a PENDING or FAILED document
func (s *DispatchService) Cancel(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	doc, release, err := s.lockDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := doc.Cancel(); err != nil {
		return nil, err
	}
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save cancelled document: %w", err)
	}
	publishDocumentEvents(ctx, s.eventPublisher, s.logger, doc)

	s.logger.Info("cancelled document",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", documentID.String()),
	)
	return doc, nil
}

// sendBatch sends documents one after another; a failure never stops the batch
func (s *DispatchService) sendBatch(ctx context.Context, tenantID uuid.UUID, docs []*erp.SalesDocument) *BatchSendResult {
	result := &BatchSendResult{
		TotalCount: len(docs),
		Results:    make([]BatchItemResult, 0, len(docs)),
	}

	for _, doc := range docs {
		item := BatchItemResult{DocumentID: doc.ID, OrderID: doc.OrderID}

		stored, sendResult, err := s.send(ctx, doc)
		switch {
		case err != nil:
			item.Error = err.Error()
		case sendResult.Success:
			item.Success = true
			item.ErpDocumentID = sendResult.ErpDocumentID
		default:
			item.Error = sendResult.ErrorMessage
		}
		item.Status = stored.Status

		if item.Success {
			result.SuccessCount++
		} else {
			result.FailCount++
		}
		result.Results = append(result.Results, item)
	}

	s.logger.Info("batch send completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total", result.TotalCount),
		zap.Int("success", result.SuccessCount),
		zap.Int("fail", result.FailCount),
	)
	return result
}

// send submits the document and persists the resulting state.
// It returns the document as stored after the attempt. The error is set when
// the order lock is held, the document can no longer be sent, or the state
// could not be saved.
func (s *DispatchService) send(ctx context.Context, doc *erp.SalesDocument) (*erp.SalesDocument, erp.SendResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erp_document", "send",
		telemetry.WithAttribute("tenant_id", doc.TenantID.String()),
		telemetry.WithAttribute("document_id", doc.ID.String()),
	)
	defer span.End()

	doc, release, err := s.lockDocument(ctx, doc)
	if err != nil {
		telemetry.RecordError(span, err)
		return doc, erp.SendResult{}, err
	}
	defer release()

	if !doc.CanRetry() {
		err := notRetryable(doc)
		telemetry.RecordError(span, err)
		return doc, erp.SendResult{}, err
	}

	result := s.submit(ctx, doc)

	if result.Success {
		if err := doc.MarkSent(result.ErpDocumentID); err != nil {
			telemetry.RecordError(span, err)
			return doc, result, err
		}
	} else {
		if err := doc.MarkFailed(result.ErrorMessage); err != nil {
			telemetry.RecordError(span, err)
			return doc, result, err
		}
	}

	if err := s.documentRepo.Update(ctx, doc); err != nil {
		telemetry.RecordError(span, err)
		fields := []zap.Field{
			zap.String("tenant_id", doc.TenantID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.String("order_id", doc.OrderID.String()),
			zap.Bool("sent", result.Success),
			zap.Error(err),
		}
		if result.Success {
			fields = append(fields, zap.String("erp_document_id", result.ErpDocumentID))
			s.logger.Error("document accepted by ERP but its state could not be saved", fields...)
		} else {
			s.logger.Warn("failed to save document send failure", fields...)
		}
		return doc, result, fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	if result.Success {
		if err := s.orderRepo.MarkErpSynced(ctx, doc.TenantID, doc.OrderID, result.ErpDocumentID); err != nil {
			s.logger.Warn("failed to mark order as ERP synced",
				zap.String("tenant_id", doc.TenantID.String()),
				zap.String("order_id", doc.OrderID.String()),
				zap.Error(err),
			)
		}
		s.logger.Info("sent document",
			zap.String("tenant_id", doc.TenantID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.String("erp_document_id", result.ErpDocumentID),
		)
	} else {
		telemetry.SetAttribute(span, "send_error", result.ErrorMessage)
		s.logger.Warn("failed to send document",
			zap.String("tenant_id", doc.TenantID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.String("error", result.ErrorMessage),
		)
	}

	publishDocumentEvents(ctx, s.eventPublisher, s.logger, doc)
	return doc, result, nil
}

// lockDocument takes the lock of the document's order and reloads the document,
// so a copy read before the lock cannot be sent or cancelled twice.
// Without a locker the document is returned unchanged.
func (s *DispatchService) lockDocument(ctx context.Context, doc *erp.SalesDocument) (*erp.SalesDocument, func(), error) {
	if s.locker == nil {
		return doc, func() {}, nil
	}

	release, err := lockOrder(ctx, s.locker, s.logger, doc.TenantID, doc.OrderID)
	if err != nil {
		if errors.Is(err, erp.ErrGenerationInProgress) {
			return doc, nil, erp.ErrDocumentBusy
		}
		return doc, nil, err
	}

	fresh, err := s.documentRepo.FindByIDForTenant(ctx, doc.TenantID, doc.ID)
	if err != nil {
		release()
		return doc, nil, fmt.Errorf("failed to reload document %s: %w", doc.ID, err)
	}
	return fresh, release, nil
}

// submit resolves the config and gateway and calls it. Every problem becomes a failed result.
func (s *DispatchService) submit(ctx context.Context, doc *erp.SalesDocument) (result erp.SendResult) {
	defer func() {
		if r := recover(); r != nil {
			result = erp.SendFailed("gateway panic: %v", r)
		}
	}()

	config, err := s.configRepo.FindByIDForTenant(ctx, doc.TenantID, doc.ErpConfigID)
	if err != nil {
		return erp.SendFailed("ERP configuration unavailable: %v", err)
	}
	gateway, err := s.gateways.Get(config.ErpType)
	if err != nil {
		return erp.SendFailed("%v", err)
	}
	return gateway.SendSalesDocument(ctx, config, doc.Lines)
}

func notRetryable(doc *erp.SalesDocument) error {
	if doc.Status == erp.DocumentStatusSent {
		return erp.ErrDocumentAlreadySent
	}
	return shared.NewDomainError(shared.ErrInvalidState.Code,
		fmt.Sprintf("ERP sales document in status %s cannot be sent", doc.Status))
}
