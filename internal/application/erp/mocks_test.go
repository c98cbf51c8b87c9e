package erp

import (
	"context"
	"testing"
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID, statuses []order.OrderStatus, page shared.PageRequest) ([]order.Order, error) {
	args := m.Called(ctx, tenantID, statuses, page)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID, statuses []order.OrderStatus) (int64, error) {
	args := m.Called(ctx, tenantID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) MarkErpSynced(ctx context.Context, tenantID, orderID uuid.UUID, erpDocumentID string) error {
	args := m.Called(ctx, tenantID, orderID, erpDocumentID)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockSettlementRepository is a mock implementation of order.SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (order.Settlements, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(order.Settlements), args.Error(1)
}

func (m *MockSettlementRepository) Save(ctx context.Context, settlement *order.Settlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

// MockErpConfigRepository is a mock implementation of erp.ErpConfigRepository
type MockErpConfigRepository struct {
	mock.Mock
}

func (m *MockErpConfigRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*erp.ErpConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.ErpConfig), args.Error(1)
}

func (m *MockErpConfigRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*erp.ErpConfig, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.ErpConfig), args.Error(1)
}

func (m *MockErpConfigRepository) FindActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockErpConfigRepository) Save(ctx context.Context, config *erp.ErpConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

// MockSalesTemplateRepository is a mock implementation of erp.SalesTemplateRepository
type MockSalesTemplateRepository struct {
	mock.Mock
}

func (m *MockSalesTemplateRepository) FindActive(ctx context.Context, tenantID, erpConfigID uuid.UUID) (*erp.SalesTemplate, error) {
	args := m.Called(ctx, tenantID, erpConfigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesTemplate), args.Error(1)
}

func (m *MockSalesTemplateRepository) Save(ctx context.Context, template *erp.SalesTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

// MockFieldMappingRepository is a mock implementation of erp.FieldMappingRepository
type MockFieldMappingRepository struct {
	mock.Mock
}

func (m *MockFieldMappingRepository) FindActiveByConfig(ctx context.Context, tenantID, erpConfigID uuid.UUID) (erp.FieldMappings, error) {
	args := m.Called(ctx, tenantID, erpConfigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(erp.FieldMappings), args.Error(1)
}

func (m *MockFieldMappingRepository) Save(ctx context.Context, mapping *erp.FieldMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// MockSalesDocumentRepository is a mock implementation of erp.SalesDocumentRepository
type MockSalesDocumentRepository struct {
	mock.Mock
}

func (m *MockSalesDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*erp.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) ExistsActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSalesDocumentRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*erp.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) FindByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []erp.DocumentStatus) ([]*erp.SalesDocument, error) {
	args := m.Called(ctx, tenantID, statuses)
	return args.Get(0).([]*erp.SalesDocument), args.Error(1)
}

func (m *MockSalesDocumentRepository) FindPage(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) ([]*erp.SalesDocument, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*erp.SalesDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockSalesDocumentRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[erp.DocumentStatus]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[erp.DocumentStatus]int64), args.Error(1)
}

func (m *MockSalesDocumentRepository) Create(ctx context.Context, doc *erp.SalesDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockSalesDocumentRepository) Update(ctx context.Context, doc *erp.SalesDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockSalesDocumentRepository) Replace(ctx context.Context, cancelled, replacement *erp.SalesDocument) error {
	args := m.Called(ctx, cancelled, replacement)
	return args.Error(0)
}

// MockGateway is a mock implementation of erp.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ErpType() erp.ErpType {
	return erp.ErpTypeEcount
}

func (m *MockGateway) SendSalesDocument(ctx context.Context, config *erp.ErpConfig, lines erp.Lines) erp.SendResult {
	args := m.Called(ctx, config, lines)
	return args.Get(0).(erp.SendResult)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockOrderLocker is a mock implementation of erp.OrderLocker
type MockOrderLocker struct {
	mock.Mock
}

func (m *MockOrderLocker) LockOrder(ctx context.Context, tenantID, orderID uuid.UUID) (func(context.Context) error, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

// fixture bundles the mocks and the test data shared by the service tests
type fixture struct {
	tenantID     uuid.UUID
	order        *order.Order
	config       *erp.ErpConfig
	template     *erp.SalesTemplate
	orderRepo    *MockOrderRepository
	settlements  *MockSettlementRepository
	configRepo   *MockErpConfigRepository
	templateRepo *MockSalesTemplateRepository
	mappingRepo  *MockFieldMappingRepository
	documentRepo *MockSalesDocumentRepository
	gateway      *MockGateway
	publisher    *MockEventPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tenantID := uuid.New()

	o, err := order.NewOrder(tenantID, order.MarketplaceCoupang, "ABC123")
	require.NoError(t, err)
	orderedAt := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	o.OrderedAt = &orderedAt
	o.Status = order.OrderStatusShipping
	o.DeliveryFee = decimal.NewFromInt(3000)
	o.AddItem(order.OrderItem{
		ProductName:    "T-Shirt",
		Quantity:       1,
		UnitPrice:      decimal.NewFromInt(11000),
		TotalPrice:     decimal.NewFromInt(11000),
		ErpProductCode: "P001",
	})

	config, err := erp.NewErpConfig(tenantID, erp.ErpTypeEcount, "COM1", "user", "key")
	require.NoError(t, err)

	tmpl := erp.NewSalesTemplate(tenantID, config.ID)
	tmpl.DefaultHeader = map[string]string{erp.FieldCustomer: "C100"}
	tmpl.DeliveryFee = erp.LineTemplate{ProductCode: "DLV", SkipIfZero: true}
	tmpl.SalesCommission = erp.LineTemplate{ProductCode: "COM", SkipIfZero: true}
	tmpl.DeliveryCommission = erp.LineTemplate{ProductCode: "DCOM", SkipIfZero: true}

	return &fixture{
		tenantID:     tenantID,
		order:        o,
		config:       config,
		template:     tmpl,
		orderRepo:    new(MockOrderRepository),
		settlements:  new(MockSettlementRepository),
		configRepo:   new(MockErpConfigRepository),
		templateRepo: new(MockSalesTemplateRepository),
		mappingRepo:  new(MockFieldMappingRepository),
		documentRepo: new(MockSalesDocumentRepository),
		gateway:      new(MockGateway),
		publisher:    new(MockEventPublisher),
	}
}

func (f *fixture) generationService(locker erp.OrderLocker) *GenerationService {
	return NewGenerationService(GenerationServiceConfig{
		OrderRepo:       f.orderRepo,
		SettlementRepo:  f.settlements,
		ConfigRepo:      f.configRepo,
		TemplateRepo:    f.templateRepo,
		MappingRepo:     f.mappingRepo,
		DocumentRepo:    f.documentRepo,
		TemplateBuilder: erp.NewTemplateLineBuilder(erp.WithSerialSource(func() int { return 1234 })),
		MappingBuilder:  erp.NewMappingLineBuilder(erp.WithSerialSource(func() int { return 1234 })),
		Locker:          locker,
		EventPublisher:  f.publisher,
	})
}

func (f *fixture) dispatchService() *DispatchService {
	return NewDispatchService(DispatchServiceConfig{
		DocumentRepo:   f.documentRepo,
		ConfigRepo:     f.configRepo,
		OrderRepo:      f.orderRepo,
		Gateways:       erp.NewGatewayRegistry(f.gateway),
		EventPublisher: f.publisher,
	})
}

// newDocument builds a PENDING document for the fixture order
func (f *fixture) newDocument(t *testing.T) *erp.SalesDocument {
	t.Helper()
	lines := erp.NewTemplateLineBuilder(erp.WithSerialSource(func() int { return 1234 })).Build(f.order, nil, f.template)
	doc, err := erp.NewSalesDocument(f.order, f.config, lines)
	require.NoError(t, err)
	doc.ClearDomainEvents()
	return doc
}
