package erp

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NeedDocumentKey is the count key for eligible orders without an active document
const NeedDocumentKey = "NEED_DOCUMENT"

// autoBatchPageSize is the page size used when collecting orders for a sweep
const autoBatchPageSize = 200

// GenerationService creates sales documents from orders.
// An order never has more than one non-cancelled document.
type GenerationService struct {
	orderRepo       order.OrderRepository
	settlementRepo  order.SettlementRepository
	configRepo      erp.ErpConfigRepository
	templateRepo    erp.SalesTemplateRepository
	mappingRepo     erp.FieldMappingRepository
	documentRepo    erp.SalesDocumentRepository
	templateBuilder *erp.TemplateLineBuilder
	mappingBuilder  *erp.MappingLineBuilder
	locker          erp.OrderLocker
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// GenerationServiceConfig holds the collaborators of GenerationService
type GenerationServiceConfig struct {
	OrderRepo       order.OrderRepository
	SettlementRepo  order.SettlementRepository
	ConfigRepo      erp.ErpConfigRepository
	TemplateRepo    erp.SalesTemplateRepository
	MappingRepo     erp.FieldMappingRepository
	DocumentRepo    erp.SalesDocumentRepository
	TemplateBuilder *erp.TemplateLineBuilder
	MappingBuilder  *erp.MappingLineBuilder
	// Locker is optional; the unique index on active documents still applies without it
	Locker         erp.OrderLocker
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(config GenerationServiceConfig) *GenerationService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	templateBuilder := config.TemplateBuilder
	if templateBuilder == nil {
		templateBuilder = erp.NewTemplateLineBuilder()
	}
	mappingBuilder := config.MappingBuilder
	if mappingBuilder == nil {
		mappingBuilder = erp.NewMappingLineBuilder()
	}

	return &GenerationService{
		orderRepo:       config.OrderRepo,
		settlementRepo:  config.SettlementRepo,
		configRepo:      config.ConfigRepo,
		templateRepo:    config.TemplateRepo,
		mappingRepo:     config.MappingRepo,
		documentRepo:    config.DocumentRepo,
		templateBuilder: templateBuilder,
		mappingBuilder:  mappingBuilder,
		locker:          config.Locker,
		eventPublisher:  config.EventPublisher,
		logger:          logger,
	}
}

// SetEventPublisher sets the publisher for document events
func (s *GenerationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Generate returns the order's active document, creating a PENDING one if none exists
func (s *GenerationService) Generate(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	if existing, err := s.findActive(ctx, tenantID, orderID); err != nil || existing != nil {
		return existing, err
	}

	release, err := s.lock(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.generateLocked(ctx, tenantID, orderID)
}

// Regenerate cancels the order's active document and generates a new one.
// It fails with ErrDocumentCannotCancel when the active document was already sent.
// The replacement is built before anything is written, and the cancellation and
// the insert are stored together, so a failure leaves the active document in place.
func (s *GenerationService) Regenerate(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	release, err := s.lock(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.findActive(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.generateLocked(ctx, tenantID, orderID)
	}
	if !existing.CanCancel() {
		return nil, erp.ErrDocumentCannotCancel
	}

	doc, err := s.buildDocument(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := existing.Cancel(); err != nil {
		return nil, err
	}
	if err := s.documentRepo.Replace(ctx, existing, doc); err != nil {
		return nil, fmt.Errorf("failed to replace document %s: %w", existing.ID, err)
	}

	publishDocumentEvents(ctx, s.eventPublisher, s.logger, existing)
	publishDocumentEvents(ctx, s.eventPublisher, s.logger, doc)

	s.logger.Info("regenerated document",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("cancelled_document_id", existing.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Int("lines", len(doc.Lines)),
		zap.String("total", doc.TotalAmount.String()),
	)
	return doc, nil
}

// ShouldGenerate reports whether Generate would create a new document,
// without side effects.
func (s *GenerationService) ShouldGenerate(ctx context.Context, tenantID, orderID uuid.UUID) (bool, error) {
	exists, err := s.documentRepo.ExistsActiveByOrder(ctx, tenantID, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing document: %w", err)
	}
	if exists {
		return false, nil
	}

	config, err := s.configRepo.FindActive(ctx, tenantID)
	if err != nil {
		if errors.Is(err, erp.ErrConfigMissing) {
			return false, nil
		}
		return false, err
	}

	_, err = s.templateRepo.FindActive(ctx, tenantID, config.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, erp.ErrTemplateMissing) {
		return false, err
	}

	mappings, err := s.mappingRepo.FindActiveByConfig(ctx, tenantID, config.ID)
	if err != nil {
		return false, err
	}
	return len(mappings) > 0, nil
}

// TryGenerate generates a document when one is due and never returns an error.
// It is meant for order lifecycle hooks that must not be blocked by ERP problems.
func (s *GenerationService) TryGenerate(ctx context.Context, tenantID, orderID uuid.UUID) *erp.SalesDocument {
	should, err := s.ShouldGenerate(ctx, tenantID, orderID)
	if err != nil {
		s.logger.Warn("failed to check document eligibility",
			zap.String("tenant_id", tenantID.String()),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil
	}
	if !should {
		return nil
	}

	doc, err := s.Generate(ctx, tenantID, orderID)
	if err != nil {
		s.logger.Warn("failed to auto-generate document",
			zap.String("tenant_id", tenantID.String()),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil
	}
	s.logger.Info("auto-generated document",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("document_id", doc.ID.String()),
	)
	return doc
}

// GenerationResult is the outcome of generating a document for one order
type GenerationResult struct {
	OrderID    uuid.UUID  `json:"order_id"`
	Success    bool       `json:"success"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// BulkGenerationResult aggregates per-order generation outcomes
type BulkGenerationResult struct {
	TotalCount   int                `json:"total_count"`
	SuccessCount int                `json:"success_count"`
	FailCount    int                `json:"fail_count"`
	Results      []GenerationResult `json:"results"`
}

// GenerateForOrders generates documents for the selected orders one by one.
// Orders that already have an active document are reported as failures.
func (s *GenerationService) GenerateForOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) *BulkGenerationResult {
	result := &BulkGenerationResult{
		TotalCount: len(orderIDs),
		Results:    make([]GenerationResult, 0, len(orderIDs)),
	}

	for _, orderID := range orderIDs {
		item := GenerationResult{OrderID: orderID}

		exists, err := s.documentRepo.ExistsActiveByOrder(ctx, tenantID, orderID)
		switch {
		case err != nil:
			item.Error = err.Error()
		case exists:
			item.Error = erp.ErrDocumentExists.Error()
		default:
			doc, genErr := s.Generate(ctx, tenantID, orderID)
			if genErr != nil {
				item.Error = genErr.Error()
			} else {
				id := doc.ID
				item.Success = true
				item.DocumentID = &id
			}
		}

		if item.Success {
			result.SuccessCount++
		} else {
			result.FailCount++
			s.logger.Warn("failed to generate document",
				zap.String("tenant_id", tenantID.String()),
				zap.String("order_id", orderID.String()),
				zap.String("error", item.Error),
			)
		}
		result.Results = append(result.Results, item)
	}

	s.logger.Info("bulk document generation completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total", result.TotalCount),
		zap.Int("success", result.SuccessCount),
		zap.Int("fail", result.FailCount),
	)
	return result
}

// CountByStatus returns document counts per status plus NEED_DOCUMENT
func (s *GenerationService) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	byStatus, err := s.documentRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	counts := make(map[string]int64, len(erp.AllDocumentStatuses)+1)
	for _, status := range erp.AllDocumentStatuses {
		counts[status.String()] = byStatus[status]
	}

	need, err := s.orderRepo.CountWithoutActiveDocument(ctx, tenantID, order.ErpEligibleStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders without document: %w", err)
	}
	counts[NeedDocumentKey] = need
	return counts, nil
}

// OrdersWithoutDocument lists eligible orders lacking an active document, newest first
func (s *GenerationService) OrdersWithoutDocument(ctx context.Context, tenantID uuid.UUID, page shared.PageRequest) (shared.Paginated[order.Order], error) {
	page = page.Normalize()
	orders, err := s.orderRepo.FindWithoutActiveDocument(ctx, tenantID, order.ErpEligibleStatuses, page)
	if err != nil {
		return shared.Paginated[order.Order]{}, fmt.Errorf("failed to list orders without document: %w", err)
	}
	total, err := s.orderRepo.CountWithoutActiveDocument(ctx, tenantID, order.ErpEligibleStatuses)
	if err != nil {
		return shared.Paginated[order.Order]{}, fmt.Errorf("failed to count orders without document: %w", err)
	}
	return shared.NewPaginated(orders, total, page), nil
}

// eligibleOrderIDs collects every eligible order without an active document.
// IDs are gathered up front so that generating documents does not shift the pages.
func (s *GenerationService) eligibleOrderIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for page := 1; ; page++ {
		orders, err := s.orderRepo.FindWithoutActiveDocument(ctx, tenantID, order.ErpEligibleStatuses,
			shared.PageRequest{Page: page, PageSize: autoBatchPageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to list orders without document: %w", err)
		}
		for i := range orders {
			ids = append(ids, orders[i].ID)
		}
		if len(orders) < autoBatchPageSize {
			return ids, nil
		}
	}
}

func (s *GenerationService) generateLocked(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	// re-check under the lock
	if existing, err := s.findActive(ctx, tenantID, orderID); err != nil || existing != nil {
		return existing, err
	}

	doc, err := s.buildDocument(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if errors.Is(err, erp.ErrDocumentExists) {
			// another writer won the unique index race
			return s.documentRepo.FindActiveByOrder(ctx, tenantID, orderID)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	publishDocumentEvents(ctx, s.eventPublisher, s.logger, doc)

	s.logger.Info("generated document",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Int("lines", len(doc.Lines)),
		zap.String("total", doc.TotalAmount.String()),
	)
	return doc, nil
}

// buildDocument assembles a new PENDING document for an order without storing it
func (s *GenerationService) buildDocument(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	config, err := s.configRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	lines, err := s.buildLines(ctx, tenantID, config, o)
	if err != nil {
		return nil, err
	}

	return erp.NewSalesDocument(o, config, lines)
}

// buildLines uses the active template, or the active field mappings when no template exists
func (s *GenerationService) buildLines(ctx context.Context, tenantID uuid.UUID, config *erp.ErpConfig, o *order.Order) (erp.Lines, error) {
	settlements, err := s.settlementRepo.FindByOrder(ctx, tenantID, o.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}

	tmpl, err := s.templateRepo.FindActive(ctx, tenantID, config.ID)
	if err == nil {
		return s.templateBuilder.Build(o, settlements, tmpl), nil
	}
	if !errors.Is(err, erp.ErrTemplateMissing) {
		return nil, err
	}

	mappings, err := s.mappingRepo.FindActiveByConfig(ctx, tenantID, config.ID)
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		return nil, erp.ErrTemplateMissing
	}
	return s.mappingBuilder.Build(o, settlements, mappings), nil
}

func (s *GenerationService) findActive(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	doc, err := s.documentRepo.FindActiveByOrder(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, erp.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active document: %w", err)
	}
	return doc, nil
}

func (s *GenerationService) lock(ctx context.Context, tenantID, orderID uuid.UUID) (func(), error) {
	return lockOrder(ctx, s.locker, s.logger, tenantID, orderID)
}

// lockOrder takes the order lock when a locker is configured.
// The returned release never fails; release errors are logged.
func lockOrder(ctx context.Context, locker erp.OrderLocker, logger *zap.Logger, tenantID, orderID uuid.UUID) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	release, err := locker.LockOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release order lock",
				zap.String("tenant_id", tenantID.String()),
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
	}, nil
}
