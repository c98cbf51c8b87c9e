package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/erpbridge/backend/internal/infrastructure/persistence/models"
	"github.com/erpbridge/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesDocumentRepository implements erp.SalesDocumentRepository using GORM
type GormSalesDocumentRepository struct {
	db *gorm.DB
}

// NewGormSalesDocumentRepository creates a new GormSalesDocumentRepository
func NewGormSalesDocumentRepository(db *gorm.DB) *GormSalesDocumentRepository {
	return &GormSalesDocumentRepository{db: db}
}

// FindByIDForTenant finds a document by ID within a tenant
func (r *GormSalesDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*erp.SalesDocument, error) {
	var model models.SalesDocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindActiveByOrder finds the non-cancelled document of an order
func (r *GormSalesDocumentRepository) FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	var model models.SalesDocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("order_id = ? AND status <> ?", orderID, string(erp.DocumentStatusCancelled)).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// ExistsActiveByOrder reports whether an order has a non-cancelled document
func (r *GormSalesDocumentRepository) ExistsActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SalesDocumentModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("order_id = ? AND status <> ?", orderID, string(erp.DocumentStatusCancelled)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByIDs returns the tenant's documents among ids, oldest first.
// IDs of other tenants are silently ignored.
func (r *GormSalesDocumentRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*erp.SalesDocument, error) {
	if len(ids) == 0 {
		return []*erp.SalesDocument{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id IN ?", ids).
		Order("created_at ASC"))
}

// FindByStatuses returns the tenant's documents in the given statuses, oldest first
func (r *GormSalesDocumentRepository) FindByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []erp.DocumentStatus) ([]*erp.SalesDocument, error) {
	if len(statuses) == 0 {
		return []*erp.SalesDocument{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("status IN ?", statusStrings(statuses)).
		Order("created_at ASC"))
}

// FindPage lists documents newest first with the total matching count
func (r *GormSalesDocumentRepository) FindPage(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) ([]*erp.SalesDocument, int64, error) {
	page := filter.Page.Normalize()
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).
			Model(&models.SalesDocumentModel{}).
			Scopes(tenant.Scope(tenantID))
		if filter.Status != nil {
			query = query.Where("status = ?", string(*filter.Status))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	docs, err := r.find(scoped().
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize))
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// CountByStatus counts the tenant's documents per status
func (r *GormSalesDocumentRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[erp.DocumentStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SalesDocumentModel{}).
		Select("status, COUNT(*) AS count").
		Scopes(tenant.Scope(tenantID)).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[erp.DocumentStatus]int64, len(rows))
	for _, row := range rows {
		counts[erp.DocumentStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// Create inserts a new document. A unique violation on the active-document
// index means another writer already generated one for the order.
func (r *GormSalesDocumentRepository) Create(ctx context.Context, doc *erp.SalesDocument) error {
	return createDocument(r.db.WithContext(ctx), doc)
}

// Update saves the send state with optimistic locking.
// The domain has already incremented Version, so the stored row must hold Version-1.
func (r *GormSalesDocumentRepository) Update(ctx context.Context, doc *erp.SalesDocument) error {
	return updateDocument(r.db.WithContext(ctx), doc)
}

// Replace stores the cancelled previous document and inserts its successor in one transaction
func (r *GormSalesDocumentRepository) Replace(ctx context.Context, cancelled, replacement *erp.SalesDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateDocument(tx, cancelled); err != nil {
			return err
		}
		return createDocument(tx, replacement)
	})
}

func createDocument(db *gorm.DB, doc *erp.SalesDocument) error {
	model, err := models.SalesDocumentModelFromDomain(doc)
	if err != nil {
		return err
	}
	if err := db.Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return erp.ErrDocumentExists
		}
		return err
	}
	return nil
}

func updateDocument(db *gorm.DB, doc *erp.SalesDocument) error {
	result := db.
		Model(&models.SalesDocumentModel{}).
		Scopes(tenant.Scope(doc.TenantID)).
		Where("id = ? AND version = ?", doc.ID, doc.Version-1).
		Updates(map[string]any{
			"status":          string(doc.Status),
			"erp_document_id": doc.ErpDocumentID,
			"sent_at":         doc.SentAt,
			"error_message":   doc.ErrorMessage,
			"version":         doc.Version,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return erp.ErrDocumentExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormSalesDocumentRepository) find(query *gorm.DB) ([]*erp.SalesDocument, error) {
	var rows []models.SalesDocumentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]*erp.SalesDocument, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func statusStrings(statuses []erp.DocumentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Ensure GormSalesDocumentRepository implements erp.SalesDocumentRepository
var _ erp.SalesDocumentRepository = (*GormSalesDocumentRepository)(nil)
