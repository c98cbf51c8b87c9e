package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ErpConfigModel is the GORM model for erp_configs table
type ErpConfigModel struct {
	TenantAggregateModel
	ErpType              string `gorm:"column:erp_type;type:varchar(20);not null"`
	CompanyCode          string `gorm:"column:company_code;type:varchar(50);not null"`
	UserID               string `gorm:"column:user_id;type:varchar(100)"`
	APIKey               string `gorm:"column:api_key;type:varchar(255)"`
	Active               bool   `gorm:"column:active;not null"`
	AutoGenerateDocument bool   `gorm:"column:auto_generate_document;not null;default:false"`
	AutoSendToErp        bool   `gorm:"column:auto_send_to_erp;not null;default:false"`
}

// TableName returns the table name for ErpConfigModel
func (ErpConfigModel) TableName() string {
	return "erp_configs"
}

// ToDomain converts ErpConfigModel to domain ErpConfig
func (m *ErpConfigModel) ToDomain() *erp.ErpConfig {
	return &erp.ErpConfig{
		TenantAggregateRoot:  m.ToDomainTenantAggregateRoot(),
		ErpType:              erp.ErpType(m.ErpType),
		CompanyCode:          m.CompanyCode,
		UserID:               m.UserID,
		APIKey:               m.APIKey,
		Active:               m.Active,
		AutoGenerateDocument: m.AutoGenerateDocument,
		AutoSendToErp:        m.AutoSendToErp,
	}
}

// ErpConfigModelFromDomain creates an ErpConfigModel from domain ErpConfig
func ErpConfigModelFromDomain(c *erp.ErpConfig) *ErpConfigModel {
	m := &ErpConfigModel{
		ErpType:              string(c.ErpType),
		CompanyCode:          c.CompanyCode,
		UserID:               c.UserID,
		APIKey:               c.APIKey,
		Active:               c.Active,
		AutoGenerateDocument: c.AutoGenerateDocument,
		AutoSendToErp:        c.AutoSendToErp,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// SalesTemplateModel is the GORM model for erp_sales_templates table.
// Each line category is stored as its own JSON document.
type SalesTemplateModel struct {
	TenantAggregateModel
	ErpConfigID        uuid.UUID      `gorm:"column:erp_config_id;type:uuid;not null;index"`
	DefaultHeader      datatypes.JSON `gorm:"column:default_header;type:jsonb"`
	MarketplaceHeaders datatypes.JSON `gorm:"column:marketplace_headers;type:jsonb"`
	ProductSale        datatypes.JSON `gorm:"column:product_sale;type:jsonb"`
	DeliveryFee        datatypes.JSON `gorm:"column:delivery_fee;type:jsonb"`
	SalesCommission    datatypes.JSON `gorm:"column:sales_commission;type:jsonb"`
	DeliveryCommission datatypes.JSON `gorm:"column:delivery_commission;type:jsonb"`
	AdditionalLines    datatypes.JSON `gorm:"column:additional_lines;type:jsonb"`
	GlobalFieldRules   datatypes.JSON `gorm:"column:global_field_rules;type:jsonb"`
	Active             bool           `gorm:"column:active;not null"`
}

// TableName returns the table name for SalesTemplateModel
func (SalesTemplateModel) TableName() string {
	return "erp_sales_templates"
}

// ToDomain converts SalesTemplateModel to domain SalesTemplate
func (m *SalesTemplateModel) ToDomain() (*erp.SalesTemplate, error) {
	t := &erp.SalesTemplate{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ErpConfigID:         m.ErpConfigID,
		DefaultHeader:       make(map[string]string),
		MarketplaceHeaders:  make(map[string]map[string]string),
		Active:              m.Active,
	}
	columns := []struct {
		name   string
		raw    datatypes.JSON
		target any
	}{
		{"default_header", m.DefaultHeader, &t.DefaultHeader},
		{"marketplace_headers", m.MarketplaceHeaders, &t.MarketplaceHeaders},
		{"product_sale", m.ProductSale, &t.ProductSale},
		{"delivery_fee", m.DeliveryFee, &t.DeliveryFee},
		{"sales_commission", m.SalesCommission, &t.SalesCommission},
		{"delivery_commission", m.DeliveryCommission, &t.DeliveryCommission},
		{"additional_lines", m.AdditionalLines, &t.AdditionalLines},
		{"global_field_rules", m.GlobalFieldRules, &t.GlobalFieldRules},
	}
	for _, col := range columns {
		if err := unmarshalColumn(col.raw, col.target); err != nil {
			return nil, fmt.Errorf("failed to decode template %s %s: %w", m.ID, col.name, err)
		}
	}
	return t, nil
}

// SalesTemplateModelFromDomain creates a SalesTemplateModel from domain SalesTemplate
func SalesTemplateModelFromDomain(t *erp.SalesTemplate) (*SalesTemplateModel, error) {
	m := &SalesTemplateModel{
		ErpConfigID: t.ErpConfigID,
		Active:      t.Active,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)

	var err error
	encode := func(v any) datatypes.JSON {
		if err != nil {
			return nil
		}
		var raw []byte
		raw, err = json.Marshal(v)
		return datatypes.JSON(raw)
	}
	m.DefaultHeader = encode(t.DefaultHeader)
	m.MarketplaceHeaders = encode(t.MarketplaceHeaders)
	m.ProductSale = encode(t.ProductSale)
	m.DeliveryFee = encode(t.DeliveryFee)
	m.SalesCommission = encode(t.SalesCommission)
	m.DeliveryCommission = encode(t.DeliveryCommission)
	m.AdditionalLines = encode(t.AdditionalLines)
	m.GlobalFieldRules = encode(t.GlobalFieldRules)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template %s: %w", t.ID, err)
	}
	return m, nil
}

// FieldMappingModel is the GORM model for erp_field_mappings table
type FieldMappingModel struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID      `gorm:"type:uuid;not null;index"`
	ErpConfigID       uuid.UUID      `gorm:"column:erp_config_id;type:uuid;not null;index"`
	FieldName         string         `gorm:"column:field_name;type:varchar(50);not null"`
	FieldPosition     string         `gorm:"column:field_position;type:varchar(10);not null"`
	LineType          string         `gorm:"column:line_type;type:varchar(30);not null;default:'ALL'"`
	ValueType         string         `gorm:"column:value_type;type:varchar(20);not null"`
	FixedValue        string         `gorm:"column:fixed_value;type:varchar(500)"`
	MarketplaceValues datatypes.JSON `gorm:"column:marketplace_values;type:jsonb"`
	TemplateValue     string         `gorm:"column:template_value;type:varchar(500)"`
	DisplayOrder      int            `gorm:"column:display_order;not null;default:0"`
	Description       string         `gorm:"type:varchar(255)"`
	Active            bool           `gorm:"column:active;not null"`
	CreatedAt         time.Time      `gorm:"not null"`
	UpdatedAt         time.Time      `gorm:"not null"`
}

// TableName returns the table name for FieldMappingModel
func (FieldMappingModel) TableName() string {
	return "erp_field_mappings"
}

// ToDomain converts FieldMappingModel to domain FieldMapping
func (m *FieldMappingModel) ToDomain() (*erp.FieldMapping, error) {
	var values map[string]string
	if err := unmarshalColumn(m.MarketplaceValues, &values); err != nil {
		return nil, fmt.Errorf("failed to decode field mapping %s marketplace_values: %w", m.ID, err)
	}
	source, err := erp.NewValueSource(erp.ValueType(m.ValueType), m.FixedValue, values, m.TemplateValue)
	if err != nil {
		return nil, err
	}
	return &erp.FieldMapping{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ErpConfigID:  m.ErpConfigID,
		FieldName:    m.FieldName,
		Position:     erp.FieldPosition(m.FieldPosition),
		LineType:     erp.LineType(m.LineType),
		Source:       source,
		DisplayOrder: m.DisplayOrder,
		Description:  m.Description,
		Active:       m.Active,
	}, nil
}

// FieldMappingModelFromDomain creates a FieldMappingModel from domain FieldMapping
func FieldMappingModelFromDomain(f *erp.FieldMapping) (*FieldMappingModel, error) {
	m := &FieldMappingModel{
		ID:            f.ID,
		TenantID:      f.TenantID,
		ErpConfigID:   f.ErpConfigID,
		FieldName:     f.FieldName,
		FieldPosition: string(f.Position),
		LineType:      string(f.LineType),
		DisplayOrder:  f.DisplayOrder,
		Description:   f.Description,
		Active:        f.Active,
	}
	if f.Source != nil {
		m.ValueType = string(f.Source.ValueType())
	}
	switch src := f.Source.(type) {
	case erp.FixedValue:
		m.FixedValue = src.Value
	case erp.MarketplaceValue:
		m.FixedValue = src.Fallback
		raw, err := json.Marshal(src.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field mapping %s: %w", f.ID, err)
		}
		m.MarketplaceValues = datatypes.JSON(raw)
	case erp.OrderFieldTemplate:
		m.TemplateValue = src.Template
	}
	return m, nil
}

// SalesDocumentModel is the GORM model for erp_sales_documents table.
// At most one non-cancelled row per (tenant_id, order_id) is enforced by a partial unique index.
type SalesDocumentModel struct {
	TenantAggregateModel
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ErpConfigID     uuid.UUID       `gorm:"column:erp_config_id;type:uuid;not null"`
	ErpType         string          `gorm:"column:erp_type;type:varchar(20);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	DocumentDate    time.Time       `gorm:"column:document_date;type:date;not null"`
	MarketplaceType string          `gorm:"column:marketplace_type;type:varchar(30);not null"`
	CustomerCode    string          `gorm:"column:customer_code;type:varchar(50)"`
	CustomerName    string          `gorm:"column:customer_name;type:varchar(100)"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(18,2);not null"`
	Lines           datatypes.JSON  `gorm:"column:lines;type:jsonb;not null"`
	ErpDocumentID   string          `gorm:"column:erp_document_id;type:varchar(100)"`
	SentAt          *time.Time      `gorm:"column:sent_at"`
	ErrorMessage    string          `gorm:"column:error_message;type:text"`
}

// TableName returns the table name for SalesDocumentModel
func (SalesDocumentModel) TableName() string {
	return "erp_sales_documents"
}

// ToDomain converts SalesDocumentModel to domain SalesDocument
func (m *SalesDocumentModel) ToDomain() (*erp.SalesDocument, error) {
	lines := make(erp.Lines, 0)
	if err := unmarshalColumn(m.Lines, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode document %s lines: %w", m.ID, err)
	}
	return &erp.SalesDocument{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		OrderID:             m.OrderID,
		ErpConfigID:         m.ErpConfigID,
		ErpType:             erp.ErpType(m.ErpType),
		Status:              erp.DocumentStatus(m.Status),
		DocumentDate:        m.DocumentDate,
		MarketplaceType:     order.MarketplaceType(m.MarketplaceType),
		CustomerCode:        m.CustomerCode,
		CustomerName:        m.CustomerName,
		TotalAmount:         m.TotalAmount,
		Lines:               lines,
		ErpDocumentID:       m.ErpDocumentID,
		SentAt:              m.SentAt,
		ErrorMessage:        m.ErrorMessage,
	}, nil
}

// SalesDocumentModelFromDomain creates a SalesDocumentModel from domain SalesDocument
func SalesDocumentModelFromDomain(d *erp.SalesDocument) (*SalesDocumentModel, error) {
	lines := d.Lines
	if lines == nil {
		lines = erp.Lines{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s lines: %w", d.ID, err)
	}
	m := &SalesDocumentModel{
		OrderID:         d.OrderID,
		ErpConfigID:     d.ErpConfigID,
		ErpType:         string(d.ErpType),
		Status:          string(d.Status),
		DocumentDate:    d.DocumentDate,
		MarketplaceType: string(d.MarketplaceType),
		CustomerCode:    d.CustomerCode,
		CustomerName:    d.CustomerName,
		TotalAmount:     d.TotalAmount,
		Lines:           datatypes.JSON(raw),
		ErpDocumentID:   d.ErpDocumentID,
		SentAt:          d.SentAt,
		ErrorMessage:    d.ErrorMessage,
	}
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	return m, nil
}

func unmarshalColumn(raw datatypes.JSON, target any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}
