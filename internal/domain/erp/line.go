package erp

import (
	"github.com/shopspring/decimal"
)

// Field names of the fixed line layout produced by the template builder
const (
	FieldIODate        = "IO_DATE"
	FieldUploadSerNo   = "UPLOAD_SER_NO"
	FieldLineNo        = "LINE_NO"
	FieldCustomer      = "CUST"
	FieldCustomerName  = "CUST_DES"
	FieldWarehouse     = "WH_CD"
	FieldProductCode   = "PROD_CD"
	FieldProductDesc   = "PROD_DES"
	FieldQuantity      = "QTY"
	FieldSupplyAmount  = "SUPPLY_AMT"
	FieldVatAmount     = "VAT_AMT"
	FieldPrice         = "PRICE"
	FieldRemarks       = "REMARKS"
	documentDateLayout = "20060102"
)

// Line is one flat field-name to value record of a sales document
type Line map[string]string

// Lines is an ordered list of lines sharing one upload serial number
type Lines []Line

// Clone returns a copy of the line
func (l Line) Clone() Line {
	out := make(Line, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// SetIfNotBlank sets a field only when the value has content
func (l Line) SetIfNotBlank(field, value string) {
	if value != "" {
		l[field] = value
	}
}

// Amount parses a monetary field; missing or non-numeric values count as zero
func (l Line) Amount(field string) decimal.Decimal {
	raw, ok := l[field]
	if !ok || raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Price returns the PRICE field as a decimal
func (l Line) Price() decimal.Decimal {
	return l.Amount(FieldPrice)
}

// applySplit writes the three amount fields
func (l Line) applySplit(split VatSplit) {
	l[FieldSupplyAmount] = split.Supply.String()
	l[FieldVatAmount] = split.Vat.String()
	l[FieldPrice] = split.Total.String()
}

// negateAmounts flips the sign of the amount fields that are present
func (l Line) negateAmounts() {
	for _, field := range []string{FieldSupplyAmount, FieldVatAmount, FieldPrice} {
		if _, ok := l[field]; ok {
			l[field] = l.Amount(field).Neg().String()
		}
	}
}

// Total sums the PRICE field of every line
func (ls Lines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range ls {
		total = total.Add(line.Price())
	}
	return total
}

// Customer returns the customer code and name of the first line
func (ls Lines) Customer() (code, name string) {
	if len(ls) == 0 {
		return "", ""
	}
	return ls[0][FieldCustomer], ls[0][FieldCustomerName]
}
