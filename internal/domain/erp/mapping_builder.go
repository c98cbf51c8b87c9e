package erp

import (
	"strconv"
	"strings"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// MappingLineBuilder builds document lines from per-field mapping rules.
// Amounts always use the standard VAT split and commissions are always negative.
type MappingLineBuilder struct {
	options  builderOptions
	resolver FieldValueResolver
}

// NewMappingLineBuilder creates a mapping line builder
func NewMappingLineBuilder(opts ...BuilderOption) *MappingLineBuilder {
	return &MappingLineBuilder{
		options:  newBuilderOptions(opts),
		resolver: NewFieldValueResolver(),
	}
}

// Build returns the ordered lines for the order. Inactive rules are ignored.
func (b *MappingLineBuilder) Build(o *order.Order, settlements order.Settlements, mappings FieldMappings) Lines {
	active := mappings.Active()
	header := active.Header()
	ctx := newLineContext(o, b.options.serial, nil)
	defaultWarehouse := o.DefaultWarehouseCode()
	lines := make(Lines, 0, len(o.Items)+3)

	for i := range o.Items {
		item := &o.Items[i]
		line := b.baseLine(ctx, header, o, item)
		line.SetIfNotBlank(FieldWarehouse, strings.TrimSpace(item.ErpWarehouseCode))
		line.SetIfNotBlank(FieldProductCode, strings.TrimSpace(item.ErpProductCode))
		line[FieldProductDesc] = item.Description()
		line[FieldQuantity] = strconv.Itoa(item.Quantity)
		line.applySplit(SplitVat(item.TotalPrice, VatSupplyDiv11))
		b.applyRules(line, active.ForLine(LineTypeProductSale), o, item)
		lines = append(lines, line)
	}

	if o.DeliveryFee.IsPositive() {
		lines = append(lines, b.singleLine(ctx, header, active, o, LineTypeDeliveryFee,
			DefaultDeliveryFeeDescription, o.DeliveryFee, false, defaultWarehouse))
	}
	if amount := SalesCommission(o, settlements); amount.IsPositive() {
		lines = append(lines, b.singleLine(ctx, header, active, o, LineTypeSalesCommission,
			DefaultSalesCommissionDescription, amount, true, defaultWarehouse))
	}
	if amount := DeliveryCommission(o, settlements, b.options.policy); amount.IsPositive() {
		lines = append(lines, b.singleLine(ctx, header, active, o, LineTypeDeliveryCommission,
			DefaultDeliveryCommissionDescription, amount, true, defaultWarehouse))
	}
	return lines
}

func (b *MappingLineBuilder) baseLine(ctx *lineContext, header FieldMappings, o *order.Order, item *order.OrderItem) Line {
	line := ctx.next()
	b.applyRules(line, header, o, item)
	return line
}

func (b *MappingLineBuilder) singleLine(ctx *lineContext, header, active FieldMappings, o *order.Order, category LineType, description string, amount decimal.Decimal, negate bool, warehouse string) Line {
	line := b.baseLine(ctx, header, o, nil)
	line.SetIfNotBlank(FieldWarehouse, warehouse)
	line[FieldProductDesc] = description
	line[FieldQuantity] = "1"
	line.applySplit(SplitVat(amount, VatSupplyDiv11))
	if negate {
		line.negateAmounts()
	}
	b.applyRules(line, active.ForLine(category), o, nil)
	return line
}

func (b *MappingLineBuilder) applyRules(line Line, rules FieldMappings, o *order.Order, item *order.OrderItem) {
	for _, rule := range rules {
		value, ok := b.resolver.ResolveMapping(rule, o, item)
		if ok && strings.TrimSpace(value) != "" {
			line[rule.FieldName] = value
		}
	}
}
