package erp

import "github.com/shopspring/decimal"

// VatMethod selects how a gross amount is split into supply and VAT
type VatMethod string

const (
	// VatSupplyDiv11 is the standard 10% VAT included in the gross: vat = round(total/11)
	VatSupplyDiv11 VatMethod = "SUPPLY_DIV_11"
	// VatNone treats the gross as VAT-exempt
	VatNone VatMethod = "NO_VAT"
)

var eleven = decimal.NewFromInt(11)

// VatSplit is a gross amount split into supply value and VAT, all whole units
type VatSplit struct {
	Supply decimal.Decimal
	Vat    decimal.Decimal
	Total  decimal.Decimal
}

// SplitVat splits total by method. Unknown methods use the standard 1/11 split.
// Rounding is half-up to whole units.
func SplitVat(total decimal.Decimal, method VatMethod) VatSplit {
	total = total.Round(0)
	if method == VatNone {
		return VatSplit{Supply: total, Vat: decimal.Zero, Total: total}
	}
	vat := total.Div(eleven).Round(0)
	return VatSplit{
		Supply: total.Sub(vat),
		Vat:    vat,
		Total:  total,
	}
}
