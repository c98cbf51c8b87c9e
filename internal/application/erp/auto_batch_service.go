package erp

import (
	"context"
	"errors"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reasons reported in a skipped AutoBatchSummary
const (
	SkipReasonNoActiveConfig = "no active ERP configuration"
	SkipReasonAutomationOff  = "automatic document generation and sending are both disabled"
)

// AutoBatchSummary reports one tenant's automatic generate-and-send sweep
type AutoBatchSummary struct {
	TenantID             uuid.UUID `json:"tenant_id"`
	Skipped              bool      `json:"skipped"`
	Reason               string    `json:"reason,omitempty"`
	AutoGenerateDocument bool      `json:"auto_generate_document"`
	AutoSendToErp        bool      `json:"auto_send_to_erp"`
	GeneratedCount       int       `json:"generated_count"`
	GenerateFailCount    int       `json:"generate_fail_count"`
	SentCount            int       `json:"sent_count"`
	SendFailCount        int       `json:"send_fail_count"`
}

// AutoBatchService runs the per-tenant sweep driven by the ERP config automation flags
type AutoBatchService struct {
	configRepo erp.ErpConfigRepository
	generation *GenerationService
	dispatch   *DispatchService
	logger     *zap.Logger
}

// NewAutoBatchService creates a new AutoBatchService
func NewAutoBatchService(
	configRepo erp.ErpConfigRepository,
	generation *GenerationService,
	dispatch *DispatchService,
	logger *zap.Logger,
) *AutoBatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoBatchService{
		configRepo: configRepo,
		generation: generation,
		dispatch:   dispatch,
		logger:     logger,
	}
}

// GetAllActiveTenantIDs lists tenants with an active ERP configuration
func (s *AutoBatchService) GetAllActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.configRepo.FindActiveTenantIDs(ctx)
}

// RunForTenant generates missing documents and sends pending ones, as enabled
// by the tenant's flags. Individual order and document failures are counted, not returned.
func (s *AutoBatchService) RunForTenant(ctx context.Context, tenantID uuid.UUID) (*AutoBatchSummary, error) {
	summary := &AutoBatchSummary{TenantID: tenantID}

	config, err := s.configRepo.FindActive(ctx, tenantID)
	if err != nil {
		if errors.Is(err, erp.ErrConfigMissing) {
			summary.Skipped = true
			summary.Reason = SkipReasonNoActiveConfig
			return summary, nil
		}
		return nil, err
	}

	summary.AutoGenerateDocument = config.AutoGenerateDocument
	summary.AutoSendToErp = config.AutoSendToErp
	if !config.AutomationEnabled() {
		summary.Skipped = true
		summary.Reason = SkipReasonAutomationOff
		return summary, nil
	}

	if config.AutoGenerateDocument {
		orderIDs, err := s.generation.eligibleOrderIDs(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		s.logger.Info("auto batch generating documents",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("orders", len(orderIDs)),
		)

		for _, orderID := range orderIDs {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, err := s.generation.Generate(ctx, tenantID, orderID); err != nil {
				summary.GenerateFailCount++
				s.logger.Warn("auto batch document generation failed",
					zap.String("tenant_id", tenantID.String()),
					zap.String("order_id", orderID.String()),
					zap.Error(err),
				)
				continue
			}
			summary.GeneratedCount++
		}
	}

	if config.AutoSendToErp {
		result, err := s.dispatch.SendPending(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		summary.SentCount = result.SuccessCount
		summary.SendFailCount = result.FailCount
	}

	s.logger.Info("auto batch completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("generated", summary.GeneratedCount),
		zap.Int("generate_failed", summary.GenerateFailCount),
		zap.Int("sent", summary.SentCount),
		zap.Int("send_failed", summary.SendFailCount),
	)
	return summary, nil
}
