package erp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FieldPosition says whether a mapped field belongs to every line or to a line category
type FieldPosition string

const (
	FieldPositionHeader FieldPosition = "HEADER"
	FieldPositionLine   FieldPosition = "LINE"
)

// LineType is the category of a document line
type LineType string

const (
	LineTypeAll                LineType = "ALL"
	LineTypeProductSale        LineType = "PRODUCT_SALE"
	LineTypeDeliveryFee        LineType = "DELIVERY_FEE"
	LineTypeSalesCommission    LineType = "SALES_COMMISSION"
	LineTypeDeliveryCommission LineType = "DELIVERY_COMMISSION"
)

// LineCategories are the concrete line categories in emission order
var LineCategories = []LineType{
	LineTypeProductSale,
	LineTypeDeliveryFee,
	LineTypeSalesCommission,
	LineTypeDeliveryCommission,
}

// IsValid checks if the line type is known
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeAll, LineTypeProductSale, LineTypeDeliveryFee, LineTypeSalesCommission, LineTypeDeliveryCommission:
		return true
	}
	return false
}

// Covers reports whether a rule scoped to t applies to lines of category other
func (t LineType) Covers(other LineType) bool {
	return t == LineTypeAll || t == other
}

// ValueType is the persisted discriminator of a ValueSource
type ValueType string

const (
	ValueTypeFixed       ValueType = "FIXED"
	ValueTypeMarketplace ValueType = "MARKETPLACE"
	ValueTypeOrderField  ValueType = "ORDER_FIELD"
)

// DefaultMarketplaceKey is the fallback entry of a marketplace-keyed value map
const DefaultMarketplaceKey = "DEFAULT"

// ValueSource is where a mapped field gets its value from.
// The set of implementations is closed: FixedValue, MarketplaceValue and OrderFieldTemplate.
type ValueSource interface {
	ValueType() ValueType
	sealedValueSource()
}

// FixedValue always yields the same literal
type FixedValue struct {
	Value string
}

// MarketplaceValue picks a value by the order's marketplace, then by DEFAULT.
// Fallback is used only when Values is empty.
type MarketplaceValue struct {
	Values   map[string]string
	Fallback string
}

// OrderFieldTemplate substitutes {placeholder} tokens from the order
type OrderFieldTemplate struct {
	Template string
}

func (FixedValue) ValueType() ValueType         { return ValueTypeFixed }
func (MarketplaceValue) ValueType() ValueType   { return ValueTypeMarketplace }
func (OrderFieldTemplate) ValueType() ValueType { return ValueTypeOrderField }

func (FixedValue) sealedValueSource()         {}
func (MarketplaceValue) sealedValueSource()   {}
func (OrderFieldTemplate) sealedValueSource() {}

// NewValueSource rebuilds a ValueSource from its stored columns
func NewValueSource(valueType ValueType, fixedValue string, marketplaceValues map[string]string, template string) (ValueSource, error) {
	switch valueType {
	case ValueTypeFixed:
		return FixedValue{Value: fixedValue}, nil
	case ValueTypeMarketplace:
		return MarketplaceValue{Values: marketplaceValues, Fallback: fixedValue}, nil
	case ValueTypeOrderField:
		return OrderFieldTemplate{Template: template}, nil
	default:
		return nil, shared.NewDomainError("INVALID_VALUE_TYPE", fmt.Sprintf("Unknown field value type: %s", valueType))
	}
}

// FieldMapping is one tenant-configured rule producing a single document field
type FieldMapping struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	ErpConfigID  uuid.UUID
	FieldName    string
	Position     FieldPosition
	LineType     LineType
	Source       ValueSource
	DisplayOrder int
	Description  string
	Active       bool
}

// NewFieldMapping creates an active field mapping
func NewFieldMapping(tenantID, erpConfigID uuid.UUID, fieldName string, position FieldPosition, lineType LineType, source ValueSource) (*FieldMapping, error) {
	if strings.TrimSpace(fieldName) == "" {
		return nil, shared.NewDomainError("INVALID_FIELD_NAME", "Field name cannot be empty")
	}
	if position != FieldPositionHeader && position != FieldPositionLine {
		return nil, shared.NewDomainError("INVALID_FIELD_POSITION", fmt.Sprintf("Invalid field position: %s", position))
	}
	if lineType == "" {
		lineType = LineTypeAll
	}
	if !lineType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LINE_TYPE", fmt.Sprintf("Invalid line type: %s", lineType))
	}
	if source == nil {
		return nil, shared.NewDomainError("INVALID_VALUE_SOURCE", "Value source is required")
	}

	return &FieldMapping{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ErpConfigID: erpConfigID,
		FieldName:   fieldName,
		Position:    position,
		LineType:    lineType,
		Source:      source,
		Active:      true,
	}, nil
}

// FieldMappings is an ordered rule set
type FieldMappings []FieldMapping

// Active returns the active rules ordered by display order
func (m FieldMappings) Active() FieldMappings {
	active := make(FieldMappings, 0, len(m))
	for _, mapping := range m {
		if mapping.Active {
			active = append(active, mapping)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].DisplayOrder < active[j].DisplayOrder
	})
	return active
}

// Header returns rules applied to every line
func (m FieldMappings) Header() FieldMappings {
	out := make(FieldMappings, 0)
	for _, mapping := range m {
		if mapping.Position == FieldPositionHeader {
			out = append(out, mapping)
		}
	}
	return out
}

// ForLine returns line rules scoped to ALL or to the given category
func (m FieldMappings) ForLine(category LineType) FieldMappings {
	out := make(FieldMappings, 0)
	for _, mapping := range m {
		if mapping.Position == FieldPositionLine && mapping.LineType.Covers(category) {
			out = append(out, mapping)
		}
	}
	return out
}
