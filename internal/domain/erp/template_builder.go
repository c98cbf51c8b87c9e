package erp

import (
	"strconv"
	"strings"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// TemplateLineBuilder builds document lines from a SalesTemplate
type TemplateLineBuilder struct {
	options builderOptions
}

// NewTemplateLineBuilder creates a template line builder
func NewTemplateLineBuilder(opts ...BuilderOption) *TemplateLineBuilder {
	return &TemplateLineBuilder{options: newBuilderOptions(opts)}
}

// lineAmounts are the figures global field rules may read
type lineAmounts struct {
	split    VatSplit
	quantity int
}

// Build returns the ordered lines of one sales document:
// product sales, delivery fee, sales commission, delivery commission, additional lines.
func (b *TemplateLineBuilder) Build(o *order.Order, settlements order.Settlements, tmpl *SalesTemplate) Lines {
	marketplace := o.MarketplaceType.String()
	ctx := newLineContext(o, b.options.serial, tmpl.HeaderFor(marketplace))
	defaultWarehouse := o.DefaultWarehouseCode()
	lines := make(Lines, 0, len(o.Items)+3)

	for i := range o.Items {
		item := &o.Items[i]
		line := ctx.next()
		line.SetIfNotBlank(FieldWarehouse, strings.TrimSpace(item.ErpWarehouseCode))

		code := item.ErpProductCode
		if strings.TrimSpace(code) == "" {
			code = tmpl.ProductSale.ProductCode
		}
		line[FieldProductCode] = code
		line[FieldProductDesc] = item.Description()
		line[FieldQuantity] = strconv.Itoa(item.Quantity)

		split := SplitVat(item.TotalPrice, tmpl.ProductSale.VatMethod)
		line.applySplit(split)
		if tmpl.ProductSale.ShouldNegate(false) {
			line.negateAmounts()
		}
		line.SetIfNotBlank(FieldRemarks, strings.TrimSpace(tmpl.ProductSale.Remarks))
		applyExtraFields(line, tmpl.ProductSale.ExtraFields)
		b.applyGlobalRules(line, tmpl.GlobalFieldRules, LineTypeProductSale, o, item, lineAmounts{split: split, quantity: item.Quantity})
		lines = append(lines, line)
	}

	if line, ok := b.feeLine(ctx, o, tmpl, LineTypeDeliveryFee, o.DeliveryFee, defaultWarehouse); ok {
		lines = append(lines, line)
	}
	if line, ok := b.feeLine(ctx, o, tmpl, LineTypeSalesCommission, SalesCommission(o, settlements), defaultWarehouse); ok {
		lines = append(lines, line)
	}
	deliveryCommission := DeliveryCommission(o, settlements, b.options.policy)
	if line, ok := b.feeLine(ctx, o, tmpl, LineTypeDeliveryCommission, deliveryCommission, defaultWarehouse); ok {
		lines = append(lines, line)
	}

	for _, extra := range tmpl.AdditionalLines {
		if !extra.Enabled {
			continue
		}
		lines = append(lines, additionalLine(ctx, extra, defaultWarehouse))
	}
	return lines
}

// feeLine builds one of the single-quantity lines. ok is false when the
// amount is zero and the template asks to skip zero lines.
func (b *TemplateLineBuilder) feeLine(ctx *lineContext, o *order.Order, tmpl *SalesTemplate, category LineType, amount decimal.Decimal, warehouse string) (Line, bool) {
	var (
		lt                 LineTemplate
		defaultDescription string
		negateByDefault    bool
		code, description  string
	)
	switch category {
	case LineTypeDeliveryFee:
		lt = tmpl.DeliveryFee
		code, description = lt.ProductCode, lt.Description
		if description == "" {
			description = DefaultDeliveryFeeDescription
		}
	case LineTypeSalesCommission:
		lt, defaultDescription, negateByDefault = tmpl.SalesCommission, DefaultSalesCommissionDescription, true
		code, description = lt.Product(o.MarketplaceType.String(), defaultDescription)
	case LineTypeDeliveryCommission:
		lt, defaultDescription, negateByDefault = tmpl.DeliveryCommission, DefaultDeliveryCommissionDescription, true
		code, description = lt.Product(o.MarketplaceType.String(), defaultDescription)
	default:
		return nil, false
	}

	if amount.IsZero() && lt.SkipIfZero {
		return nil, false
	}

	line := ctx.next()
	line.SetIfNotBlank(FieldWarehouse, warehouse)
	line[FieldProductCode] = code
	line[FieldProductDesc] = description
	line[FieldQuantity] = "1"

	split := SplitVat(amount, lt.VatMethod)
	line.applySplit(split)
	if lt.ShouldNegate(negateByDefault) {
		line.negateAmounts()
	}
	line.SetIfNotBlank(FieldRemarks, strings.TrimSpace(lt.Remarks))
	applyExtraFields(line, lt.ExtraFields)
	b.applyGlobalRules(line, tmpl.GlobalFieldRules, category, o, nil, lineAmounts{split: split, quantity: 1})
	return line, true
}

func additionalLine(ctx *lineContext, extra AdditionalLine, defaultWarehouse string) Line {
	line := ctx.next()
	if strings.TrimSpace(extra.WarehouseCode) != "" {
		line[FieldWarehouse] = extra.WarehouseCode
	} else {
		line.SetIfNotBlank(FieldWarehouse, defaultWarehouse)
	}
	line.SetIfNotBlank(FieldProductCode, strings.TrimSpace(extra.ProductCode))
	line[FieldProductDesc] = extra.Description
	line[FieldQuantity] = strconv.Itoa(extra.EffectiveQuantity())

	line.applySplit(SplitVat(extra.Amount(), extra.VatMethod))
	if extra.NegateAmount {
		line.negateAmounts()
	}
	line.SetIfNotBlank(FieldRemarks, strings.TrimSpace(extra.Remarks))
	return line
}

func applyExtraFields(line Line, extra map[string]string) {
	for k, v := range extra {
		if strings.TrimSpace(v) != "" {
			line[k] = v
		}
	}
}

func (b *TemplateLineBuilder) applyGlobalRules(line Line, rules []GlobalFieldRule, category LineType, o *order.Order, item *order.OrderItem, amounts lineAmounts) {
	for _, rule := range rules {
		if strings.TrimSpace(rule.FieldName) == "" || !rule.AppliesTo(category) {
			continue
		}
		if value := globalRuleValue(rule, o, item, amounts); strings.TrimSpace(value) != "" {
			line[rule.FieldName] = value
		}
	}
}

func globalRuleValue(rule GlobalFieldRule, o *order.Order, item *order.OrderItem, amounts lineAmounts) string {
	switch rule.Source {
	case GlobalSourceFixed, "":
		return rule.FixedValue
	case GlobalSourceOrderID:
		return o.ID.String()
	case GlobalSourceMarketplaceOrderID:
		return o.MarketplaceOrderID
	case GlobalSourceBuyerName:
		return o.BuyerName
	case GlobalSourceReceiverName:
		return o.ReceiverName
	case GlobalSourceProductName:
		if item == nil {
			return ""
		}
		return item.ProductName
	case GlobalSourceOptionName:
		if item == nil {
			return ""
		}
		return item.OptionName
	case GlobalSourceUnitPriceVat:
		if amounts.quantity <= 0 {
			return "0"
		}
		return amounts.split.Total.Div(decimal.NewFromInt(int64(amounts.quantity))).Round(0).String()
	case GlobalSourceTotalAmount:
		return amounts.split.Total.String()
	case GlobalSourceSupplyAmount:
		return amounts.split.Supply.String()
	case GlobalSourceVatAmount:
		return amounts.split.Vat.String()
	case GlobalSourceTemplate:
		if strings.TrimSpace(rule.TemplateValue) == "" {
			return ""
		}
		return ExpandPlaceholders(rule.TemplateValue, o, item)
	default:
		return ""
	}
}
