package erp

import (
	"strings"
	"time"

	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxErrorMessageLength bounds the stored gateway error text
const maxErrorMessageLength = 2000

// SalesDocument is one generated ERP sales voucher for one order.
// Lines are fixed at generation; only the send state changes afterwards.
type SalesDocument struct {
	shared.TenantAggregateRoot
	OrderID         uuid.UUID
	ErpConfigID     uuid.UUID
	ErpType         ErpType
	Status          DocumentStatus
	DocumentDate    time.Time
	MarketplaceType order.MarketplaceType
	CustomerCode    string
	CustomerName    string
	TotalAmount     decimal.Decimal
	Lines           Lines
	ErpDocumentID   string
	SentAt          *time.Time
	ErrorMessage    string
}

// NewSalesDocument creates a PENDING document for an order.
// The total is the sum of the lines' PRICE fields and the customer comes from the first line.
func NewSalesDocument(o *order.Order, config *ErpConfig, lines Lines) (*SalesDocument, error) {
	if o == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order cannot be nil")
	}
	if config == nil {
		return nil, ErrConfigMissing
	}
	if o.TenantID != config.TenantID {
		return nil, shared.NewDomainError("TENANT_MISMATCH", "Order and ERP configuration belong to different tenants")
	}

	customerCode, customerName := lines.Customer()
	doc := &SalesDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(o.TenantID),
		OrderID:             o.ID,
		ErpConfigID:         config.ID,
		ErpType:             config.ErpType,
		Status:              DocumentStatusPending,
		DocumentDate:        o.OrderDate(),
		MarketplaceType:     o.MarketplaceType,
		CustomerCode:        customerCode,
		CustomerName:        customerName,
		TotalAmount:         lines.Total(),
		Lines:               lines,
	}

	doc.AddDomainEvent(NewDocumentGeneratedEvent(doc))

	return doc, nil
}

// CanRetry returns true if the document may be sent (again)
func (d *SalesDocument) CanRetry() bool {
	return d.Status.CanRetry()
}

// CanCancel returns true if the document may be cancelled
func (d *SalesDocument) CanCancel() bool {
	return d.Status.CanCancel()
}

// IsActive returns true unless the document was cancelled
func (d *SalesDocument) IsActive() bool {
	return d.Status != DocumentStatusCancelled
}

// MarkSent records a successful send and clears any previous error
func (d *SalesDocument) MarkSent(erpDocumentID string) error {
	if !d.Status.CanTransitionTo(DocumentStatusSent) {
		return d.sendRefused()
	}

	oldStatus := d.Status
	now := time.Now()
	d.Status = DocumentStatusSent
	d.ErpDocumentID = erpDocumentID
	d.SentAt = &now
	d.ErrorMessage = ""
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentSentEvent(d, oldStatus))

	return nil
}

// MarkFailed records a failed send attempt
func (d *SalesDocument) MarkFailed(message string) error {
	if !d.Status.CanTransitionTo(DocumentStatusFailed) {
		return d.sendRefused()
	}

	oldStatus := d.Status
	d.Status = DocumentStatusFailed
	d.ErrorMessage = truncateMessage(message)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentFailedEvent(d, oldStatus))

	return nil
}

// Cancel marks the document as cancelled; sent documents cannot be cancelled
func (d *SalesDocument) Cancel() error {
	if !d.Status.CanCancel() {
		return ErrDocumentCannotCancel
	}

	oldStatus := d.Status
	d.Status = DocumentStatusCancelled
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentCancelledEvent(d, oldStatus))

	return nil
}

func (d *SalesDocument) sendRefused() error {
	if d.Status == DocumentStatusSent {
		return ErrDocumentAlreadySent
	}
	return shared.NewDomainError(shared.ErrInvalidState.Code,
		"Cannot send ERP sales document in status: "+d.Status.String())
}

func truncateMessage(message string) string {
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= maxErrorMessageLength {
		return message
	}
	return string(runes[:maxErrorMessageLength])
}
