package erp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/erpbridge/backend/internal/domain/order"
)

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// FieldValueResolver resolves mapped field values against an order.
// It never fails: absent data resolves to "not found" or an empty string.
type FieldValueResolver struct{}

// NewFieldValueResolver creates a resolver
func NewFieldValueResolver() FieldValueResolver {
	return FieldValueResolver{}
}

// ResolveMapping resolves a field mapping; ok is false when the value is absent
func (r FieldValueResolver) ResolveMapping(mapping FieldMapping, o *order.Order, item *order.OrderItem) (string, bool) {
	return r.Resolve(mapping.Source, o, item)
}

// Resolve resolves a value source for an order and optional item.
// ok is false when the source yields no value.
func (r FieldValueResolver) Resolve(source ValueSource, o *order.Order, item *order.OrderItem) (string, bool) {
	switch src := source.(type) {
	case FixedValue:
		return src.Value, true
	case MarketplaceValue:
		return r.resolveMarketplace(src, o)
	case OrderFieldTemplate:
		if strings.TrimSpace(src.Template) == "" {
			return "", false
		}
		return ExpandPlaceholders(src.Template, o, item), true
	default:
		return "", false
	}
}

func (r FieldValueResolver) resolveMarketplace(src MarketplaceValue, o *order.Order) (string, bool) {
	if len(src.Values) == 0 {
		return src.Fallback, src.Fallback != ""
	}
	if value, ok := src.Values[o.MarketplaceType.String()]; ok {
		return value, true
	}
	if value, ok := src.Values[DefaultMarketplaceKey]; ok {
		return value, true
	}
	return "", false
}

// ExpandPlaceholders replaces every {placeholder} in template.
// Unknown placeholders, and item placeholders without an item, become "".
func ExpandPlaceholders(template string, o *order.Order, item *order.OrderItem) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		return placeholderValue(name, o, item)
	})
}

func placeholderValue(name string, o *order.Order, item *order.OrderItem) string {
	switch name {
	case "orderId":
		return o.MarketplaceOrderID
	case "productOrderId":
		return o.MarketplaceProductOrderID
	case "marketplaceName":
		return o.MarketplaceType.String()
	case "marketplaceDisplayName":
		return o.MarketplaceType.DisplayName()
	case "buyerName":
		return o.BuyerName
	case "receiverName":
		return o.ReceiverName
	case "receiverPhone":
		return o.ReceiverPhone
	case "receiverAddress":
		return o.ReceiverAddress
	case "orderDate":
		if o.OrderedAt == nil {
			return ""
		}
		return o.OrderedAt.Format(documentDateLayout)
	case "totalAmount":
		return o.TotalAmount.String()
	case "deliveryFee":
		return o.DeliveryFee.String()
	case "productName":
		if item == nil {
			return ""
		}
		return item.ProductName
	case "optionName":
		if item == nil {
			return ""
		}
		return item.OptionName
	case "quantity":
		if item == nil {
			return ""
		}
		return strconv.Itoa(item.Quantity)
	default:
		return ""
	}
}
