// Package tenant scopes GORM statements to one tenant.
//
// Repositories apply the scope explicitly:
//
//	db.WithContext(ctx).Scopes(tenant.Scope(tenantID)).Where("id = ?", id).First(&model)
//
// There is no default tenant. A nil tenant ID fails the statement with
// ErrTenantIDRequired instead of widening it to every tenant.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant column shared by every tenant-owned table
const Column = "tenant_id"

// ErrTenantIDRequired is returned when a tenant-scoped statement has no tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope restricts a statement to rows of tenantID on the statement's table
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: Column},
			Value:  tenantID,
		})
	}
}
