package erp

import (
	"math/rand/v2"
	"strconv"

	"github.com/erpbridge/backend/internal/domain/order"
)

// Default descriptions of generated non-product lines
const (
	DefaultDeliveryFeeDescription        = "Delivery fee"
	DefaultSalesCommissionDescription    = "Sales commission"
	DefaultDeliveryCommissionDescription = "Delivery commission"
)

// SerialSource yields the upload serial number shared by all lines of one document
type SerialSource func() int

// RandomSerial returns a 4-digit serial in [1000, 9999]
func RandomSerial() int {
	return 1000 + rand.IntN(9000)
}

// BuilderOption configures a line builder
type BuilderOption func(*builderOptions)

type builderOptions struct {
	serial SerialSource
	policy DeliveryCommissionPolicy
}

// WithSerialSource overrides the upload serial generator
func WithSerialSource(src SerialSource) BuilderOption {
	return func(o *builderOptions) {
		if src != nil {
			o.serial = src
		}
	}
}

// WithDeliveryCommissionPolicy overrides the delivery commission fallbacks
func WithDeliveryCommissionPolicy(policy DeliveryCommissionPolicy) BuilderOption {
	return func(o *builderOptions) {
		o.policy = policy
	}
}

func newBuilderOptions(opts []BuilderOption) builderOptions {
	options := builderOptions{
		serial: RandomSerial,
		policy: DefaultDeliveryCommissionPolicy(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// lineContext numbers the lines of one document and stamps the shared fields
type lineContext struct {
	ioDate string
	serial string
	lineNo int
	header map[string]string
}

func newLineContext(o *order.Order, serial SerialSource, header map[string]string) *lineContext {
	return &lineContext{
		ioDate: o.OrderDate().Format(documentDateLayout),
		serial: strconv.Itoa(serial()),
		header: header,
	}
}

// next creates the next line: header fields first, then date, serial and line number
func (c *lineContext) next() Line {
	c.lineNo++
	line := make(Line, len(c.header)+3)
	for k, v := range c.header {
		line[k] = v
	}
	line[FieldIODate] = c.ioDate
	line[FieldUploadSerNo] = c.serial
	line[FieldLineNo] = strconv.Itoa(c.lineNo)
	return line
}
