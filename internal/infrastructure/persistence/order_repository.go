package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/erpbridge/backend/internal/infrastructure/persistence/models"
	"github.com/erpbridge/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withoutActiveDocument restricts marketplace_orders to rows with no non-cancelled sales document
const withoutActiveDocument = `NOT EXISTS (
	SELECT 1 FROM erp_sales_documents d
	WHERE d.tenant_id = marketplace_orders.tenant_id
	AND d.order_id = marketplace_orders.id
	AND d.status <> ?)`

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByIDForTenant finds an order with its items within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindWithoutActiveDocument lists orders without a non-cancelled sales document, newest first
func (r *GormOrderRepository) FindWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID, statuses []order.OrderStatus, page shared.PageRequest) ([]order.Order, error) {
	page = page.Normalize()
	var orderModels []models.OrderModel
	if err := r.withoutDocumentQuery(ctx, tenantID, statuses).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("ordered_at DESC").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// CountWithoutActiveDocument counts orders without a non-cancelled sales document
func (r *GormOrderRepository) CountWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID, statuses []order.OrderStatus) (int64, error) {
	var count int64
	if err := r.withoutDocumentQuery(ctx, tenantID, statuses).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkErpSynced sets the ERP synced flag on an order
func (r *GormOrderRepository) MarkErpSynced(ctx context.Context, tenantID, orderID uuid.UUID, erpDocumentID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"erp_synced":      true,
			"erp_document_id": erpDocumentID,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Save creates or updates an order and replaces its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			itemIDs[i] = model.Items[i].ID
		}
		stale := tx.Scopes(tenant.Scope(o.TenantID)).Where("order_id = ?", o.ID)
		if len(itemIDs) > 0 {
			stale = stale.Where("id NOT IN ?", itemIDs)
		}
		if err := stale.Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) withoutDocumentQuery(ctx context.Context, tenantID uuid.UUID, statuses []order.OrderStatus) *gorm.DB {
	statusValues := make([]string, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("status IN ?", statusValues).
		Where(withoutActiveDocument, string(erp.DocumentStatusCancelled))
}

// Ensure GormOrderRepository implements order.OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)

// GormSettlementRepository implements order.SettlementRepository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByOrder returns all settlement rows for an order
func (r *GormSettlementRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (order.Settlements, error) {
	var rows []models.SettlementModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	settlements := make(order.Settlements, len(rows))
	for i := range rows {
		settlements[i] = rows[i].ToDomain()
	}
	return settlements, nil
}

// Save creates or updates a settlement row
func (r *GormSettlementRepository) Save(ctx context.Context, settlement *order.Settlement) error {
	if settlement.ID == uuid.Nil {
		settlement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(models.SettlementModelFromDomain(settlement)).Error
}

// Ensure GormSettlementRepository implements order.SettlementRepository
var _ order.SettlementRepository = (*GormSettlementRepository)(nil)
