package erp

import (
	"strings"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductOverride replaces a line's product code and description for one marketplace.
// Blank fields keep the line template's own value.
type ProductOverride struct {
	ProductCode string `json:"prodCd,omitempty"`
	Description string `json:"prodDes,omitempty"`
}

// LineTemplate configures one line category of a sales template
type LineTemplate struct {
	ProductCode string    `json:"prodCd,omitempty"`
	Description string    `json:"prodDes,omitempty"`
	VatMethod   VatMethod `json:"vatCalculation,omitempty"`

	// NegateAmount flips the sign of all amounts. Nil means the category default.
	NegateAmount *bool `json:"negateAmount,omitempty"`
	SkipIfZero   bool  `json:"skipIfZero,omitempty"`

	Remarks     string            `json:"remarks,omitempty"`
	ExtraFields map[string]string `json:"extraFields,omitempty"`

	// MarketplaceProducts is keyed by marketplace code (e.g. "COUPANG")
	MarketplaceProducts map[string]ProductOverride `json:"marketplaceProdCds,omitempty"`
}

// ShouldNegate resolves the negate flag against the category default
func (t LineTemplate) ShouldNegate(categoryDefault bool) bool {
	if t.NegateAmount == nil {
		return categoryDefault
	}
	return *t.NegateAmount
}

// Product returns the code and description for a marketplace,
// falling back to the template values and then to defaultDescription.
func (t LineTemplate) Product(marketplace, defaultDescription string) (code, description string) {
	code = t.ProductCode
	description = t.Description
	if override, ok := t.MarketplaceProducts[marketplace]; ok {
		if strings.TrimSpace(override.ProductCode) != "" {
			code = override.ProductCode
		}
		if strings.TrimSpace(override.Description) != "" {
			description = override.Description
		}
	}
	if description == "" {
		description = defaultDescription
	}
	return code, description
}

// AdditionalLine is a fixed extra line appended to every document
type AdditionalLine struct {
	Enabled       bool            `json:"enabled"`
	ProductCode   string          `json:"prodCd,omitempty"`
	Description   string          `json:"prodDes,omitempty"`
	WarehouseCode string          `json:"whCd,omitempty"`
	Quantity      int             `json:"qty,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	VatMethod     VatMethod       `json:"vatCalculation,omitempty"`
	NegateAmount  bool            `json:"negateAmount,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
}

// EffectiveQuantity returns the configured quantity, defaulting to 1
func (l AdditionalLine) EffectiveQuantity() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}

// Amount returns quantity × unit price
func (l AdditionalLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.EffectiveQuantity())))
}

// GlobalValueSource selects what a global field rule writes
type GlobalValueSource string

const (
	GlobalSourceFixed              GlobalValueSource = "FIXED"
	GlobalSourceOrderID            GlobalValueSource = "ORDER_ID"
	GlobalSourceMarketplaceOrderID GlobalValueSource = "MARKETPLACE_ORDER_ID"
	GlobalSourceBuyerName          GlobalValueSource = "BUYER_NAME"
	GlobalSourceReceiverName       GlobalValueSource = "RECEIVER_NAME"
	GlobalSourceProductName        GlobalValueSource = "PRODUCT_NAME"
	GlobalSourceOptionName         GlobalValueSource = "OPTION_NAME"
	GlobalSourceUnitPriceVat       GlobalValueSource = "UNIT_PRICE_VAT"
	GlobalSourceTotalAmount        GlobalValueSource = "TOTAL_AMOUNT"
	GlobalSourceSupplyAmount       GlobalValueSource = "SUPPLY_AMOUNT"
	GlobalSourceVatAmount          GlobalValueSource = "VAT_AMOUNT"
	GlobalSourceTemplate           GlobalValueSource = "TEMPLATE"
)

// GlobalFieldRule writes one field on every line of the targeted categories.
// Unlike FieldMapping it can read the amounts computed for the line.
type GlobalFieldRule struct {
	FieldName     string            `json:"fieldName"`
	LineTypes     []LineType        `json:"lineTypes,omitempty"`
	Source        GlobalValueSource `json:"valueSource"`
	FixedValue    string            `json:"fixedValue,omitempty"`
	TemplateValue string            `json:"templateValue,omitempty"`
}

// AppliesTo reports whether the rule targets the category; no line types means all
func (r GlobalFieldRule) AppliesTo(category LineType) bool {
	if len(r.LineTypes) == 0 {
		return true
	}
	for _, lt := range r.LineTypes {
		if lt.Covers(category) {
			return true
		}
	}
	return false
}

// SalesTemplate is the fixed-shape line configuration of one tenant ERP config
type SalesTemplate struct {
	shared.TenantAggregateRoot
	ErpConfigID uuid.UUID

	DefaultHeader map[string]string
	// MarketplaceHeaders overrides DefaultHeader per marketplace code
	MarketplaceHeaders map[string]map[string]string

	ProductSale        LineTemplate
	DeliveryFee        LineTemplate
	SalesCommission    LineTemplate
	DeliveryCommission LineTemplate

	AdditionalLines  []AdditionalLine
	GlobalFieldRules []GlobalFieldRule

	Active bool
}

// NewSalesTemplate creates an active, empty template for an ERP config
func NewSalesTemplate(tenantID, erpConfigID uuid.UUID) *SalesTemplate {
	return &SalesTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ErpConfigID:         erpConfigID,
		DefaultHeader:       make(map[string]string),
		MarketplaceHeaders:  make(map[string]map[string]string),
		Active:              true,
	}
}

// HeaderFor merges the default header with the marketplace override
func (t *SalesTemplate) HeaderFor(marketplace string) map[string]string {
	header := make(map[string]string, len(t.DefaultHeader))
	for k, v := range t.DefaultHeader {
		header[k] = v
	}
	for k, v := range t.MarketplaceHeaders[marketplace] {
		header[k] = v
	}
	return header
}
