package persistence

import (
	"context"
	"errors"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/infrastructure/persistence/models"
	"github.com/erpbridge/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormErpConfigRepository implements erp.ErpConfigRepository using GORM
type GormErpConfigRepository struct {
	db *gorm.DB
}

// NewGormErpConfigRepository creates a new GormErpConfigRepository
func NewGormErpConfigRepository(db *gorm.DB) *GormErpConfigRepository {
	return &GormErpConfigRepository{db: db}
}

// FindActive returns the tenant's active ERP config, the most recently updated when several exist
func (r *GormErpConfigRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*erp.ErpConfig, error) {
	var model models.ErpConfigModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("active = ?", true).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrConfigMissing
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an ERP config by ID within a tenant, active or not
func (r *GormErpConfigRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*erp.ErpConfig, error) {
	var model models.ErpConfigModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrConfigMissing
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveTenantIDs lists tenants having at least one active ERP config
func (r *GormErpConfigRepository) FindActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ErpConfigModel{}).
		Where("active = ?", true).
		Distinct("tenant_id").
		Order("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

// Save creates or updates an ERP config
func (r *GormErpConfigRepository) Save(ctx context.Context, config *erp.ErpConfig) error {
	return r.db.WithContext(ctx).Save(models.ErpConfigModelFromDomain(config)).Error
}

// Ensure GormErpConfigRepository implements erp.ErpConfigRepository
var _ erp.ErpConfigRepository = (*GormErpConfigRepository)(nil)

// GormSalesTemplateRepository implements erp.SalesTemplateRepository using GORM
type GormSalesTemplateRepository struct {
	db *gorm.DB
}

// NewGormSalesTemplateRepository creates a new GormSalesTemplateRepository
func NewGormSalesTemplateRepository(db *gorm.DB) *GormSalesTemplateRepository {
	return &GormSalesTemplateRepository{db: db}
}

// FindActive returns the active template of an ERP config
func (r *GormSalesTemplateRepository) FindActive(ctx context.Context, tenantID, erpConfigID uuid.UUID) (*erp.SalesTemplate, error) {
	var model models.SalesTemplateModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("erp_config_id = ? AND active = ?", erpConfigID, true).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrTemplateMissing
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates a template
func (r *GormSalesTemplateRepository) Save(ctx context.Context, template *erp.SalesTemplate) error {
	model, err := models.SalesTemplateModelFromDomain(template)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormSalesTemplateRepository implements erp.SalesTemplateRepository
var _ erp.SalesTemplateRepository = (*GormSalesTemplateRepository)(nil)

// GormFieldMappingRepository implements erp.FieldMappingRepository using GORM
type GormFieldMappingRepository struct {
	db *gorm.DB
}

// NewGormFieldMappingRepository creates a new GormFieldMappingRepository
func NewGormFieldMappingRepository(db *gorm.DB) *GormFieldMappingRepository {
	return &GormFieldMappingRepository{db: db}
}

// FindActiveByConfig returns the active mappings of an ERP config by display order
func (r *GormFieldMappingRepository) FindActiveByConfig(ctx context.Context, tenantID, erpConfigID uuid.UUID) (erp.FieldMappings, error) {
	var rows []models.FieldMappingModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("erp_config_id = ? AND active = ?", erpConfigID, true).
		Order("display_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	mappings := make(erp.FieldMappings, 0, len(rows))
	for i := range rows {
		mapping, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, *mapping)
	}
	return mappings, nil
}

// Save creates or updates a field mapping
func (r *GormFieldMappingRepository) Save(ctx context.Context, mapping *erp.FieldMapping) error {
	model, err := models.FieldMappingModelFromDomain(mapping)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormFieldMappingRepository implements erp.FieldMappingRepository
var _ erp.FieldMappingRepository = (*GormFieldMappingRepository)(nil)
