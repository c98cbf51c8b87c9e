package erp

import (
	"fmt"
	"strings"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErpType identifies the external ERP product
type ErpType string

const (
	ErpTypeEcount ErpType = "ECOUNT"
	ErpTypeIcount ErpType = "ICOUNT"
)

// IsValid checks if the ERP type is known
func (t ErpType) IsValid() bool {
	return t == ErpTypeEcount || t == ErpTypeIcount
}

// String returns the string representation
func (t ErpType) String() string {
	return string(t)
}

// ErpConfig is a tenant's ERP connection plus the automation flags
// read by the auto batch.
type ErpConfig struct {
	shared.TenantAggregateRoot
	ErpType     ErpType
	CompanyCode string
	UserID      string
	APIKey      string
	Active      bool

	// AutoGenerateDocument creates documents for eligible orders during the batch
	AutoGenerateDocument bool
	// AutoSendToErp sends PENDING documents during the batch
	AutoSendToErp bool
}

// NewErpConfig creates an active ERP configuration with automation disabled
func NewErpConfig(tenantID uuid.UUID, erpType ErpType, companyCode, userID, apiKey string) (*ErpConfig, error) {
	if !erpType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ERP_TYPE", fmt.Sprintf("Unknown ERP type: %s", erpType))
	}
	if strings.TrimSpace(companyCode) == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot be empty")
	}

	return &ErpConfig{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ErpType:             erpType,
		CompanyCode:         companyCode,
		UserID:              userID,
		APIKey:              apiKey,
		Active:              true,
	}, nil
}

// SetAutomation updates the auto batch flags
func (c *ErpConfig) SetAutomation(autoGenerate, autoSend bool) {
	c.AutoGenerateDocument = autoGenerate
	c.AutoSendToErp = autoSend
	c.Touch()
}

// AutomationEnabled reports whether the auto batch has anything to do
func (c *ErpConfig) AutomationEnabled() bool {
	return c.AutoGenerateDocument || c.AutoSendToErp
}
