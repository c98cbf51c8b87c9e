package handler

import (
	"context"

	apperp "github.com/erpbridge/backend/internal/application/erp"
	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/erpbridge/backend/internal/infrastructure/scheduler"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockQuerier struct{ mock.Mock }

func (m *mockQuerier) List(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) (shared.Paginated[*erp.SalesDocument], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[*erp.SalesDocument]), args.Error(1)
}

func (m *mockQuerier) Get(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

func (m *mockGenerator) Regenerate(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

func (m *mockGenerator) GenerateForOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) *apperp.BulkGenerationResult {
	args := m.Called(ctx, tenantID, orderIDs)
	return args.Get(0).(*apperp.BulkGenerationResult)
}

func (m *mockGenerator) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockGenerator) OrdersWithoutDocument(ctx context.Context, tenantID uuid.UUID, page shared.PageRequest) (shared.Paginated[order.Order], error) {
	args := m.Called(ctx, tenantID, page)
	return args.Get(0).(shared.Paginated[order.Order]), args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) SendOne(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

func (m *mockDispatcher) SendAllPending(ctx context.Context, tenantID uuid.UUID) (*apperp.BatchSendResult, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apperp.BatchSendResult), args.Error(1)
}

func (m *mockDispatcher) SendSelected(ctx context.Context, tenantID uuid.UUID, documentIDs []uuid.UUID) (*apperp.BatchSendResult, error) {
	args := m.Called(ctx, tenantID, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apperp.BatchSendResult), args.Error(1)
}

func (m *mockDispatcher) Cancel(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

type mockBatchRunner struct{ mock.Mock }

func (m *mockBatchRunner) RunForTenant(ctx context.Context, tenantID uuid.UUID) (*apperp.AutoBatchSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apperp.AutoBatchSummary), args.Error(1)
}

type mockJobQueue struct{ mock.Mock }

func (m *mockJobQueue) TriggerTenant(tenantID uuid.UUID) (*scheduler.ErpBatchJob, error) {
	args := m.Called(tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.ErpBatchJob), args.Error(1)
}

func (m *mockJobQueue) GetJobHistoryByTenant(tenantID uuid.UUID, limit int) []scheduler.ErpBatchJob {
	args := m.Called(tenantID, limit)
	return args.Get(0).([]scheduler.ErpBatchJob)
}
