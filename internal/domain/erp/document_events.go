package erp

import (
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSalesDocument is the aggregate type of ERP sales documents
const AggregateTypeSalesDocument = "ErpSalesDocument"

// Event type constants for SalesDocument
const (
	EventTypeDocumentGenerated = "ErpDocumentGenerated"
	EventTypeDocumentSent      = "ErpDocumentSent"
	EventTypeDocumentFailed    = "ErpDocumentFailed"
	EventTypeDocumentCancelled = "ErpDocumentCancelled"
)

// DocumentGeneratedEvent is published when a document is created for an order
type DocumentGeneratedEvent struct {
	shared.BaseDomainEvent
	DocumentID  uuid.UUID       `json:"document_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ErpType     ErpType         `json:"erp_type"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewDocumentGeneratedEvent creates a new DocumentGeneratedEvent
func NewDocumentGeneratedEvent(d *SalesDocument) *DocumentGeneratedEvent {
	return &DocumentGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeDocumentGenerated,
			AggregateTypeSalesDocument,
			d.ID,
			d.TenantID,
		),
		DocumentID:  d.ID,
		OrderID:     d.OrderID,
		ErpType:     d.ErpType,
		LineCount:   len(d.Lines),
		TotalAmount: d.TotalAmount,
	}
}

// DocumentSentEvent is published when the ERP accepted a document
type DocumentSentEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID      `json:"document_id"`
	OrderID        uuid.UUID      `json:"order_id"`
	ErpDocumentID  string         `json:"erp_document_id"`
	PreviousStatus DocumentStatus `json:"previous_status"`
}

// NewDocumentSentEvent creates a new DocumentSentEvent
func NewDocumentSentEvent(d *SalesDocument, previous DocumentStatus) *DocumentSentEvent {
	return &DocumentSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeDocumentSent,
			AggregateTypeSalesDocument,
			d.ID,
			d.TenantID,
		),
		DocumentID:     d.ID,
		OrderID:        d.OrderID,
		ErpDocumentID:  d.ErpDocumentID,
		PreviousStatus: previous,
	}
}

// DocumentFailedEvent is published when a send attempt failed
type DocumentFailedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID      `json:"document_id"`
	OrderID        uuid.UUID      `json:"order_id"`
	ErrorMessage   string         `json:"error_message"`
	PreviousStatus DocumentStatus `json:"previous_status"`
}

// NewDocumentFailedEvent creates a new DocumentFailedEvent
func NewDocumentFailedEvent(d *SalesDocument, previous DocumentStatus) *DocumentFailedEvent {
	return &DocumentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeDocumentFailed,
			AggregateTypeSalesDocument,
			d.ID,
			d.TenantID,
		),
		DocumentID:     d.ID,
		OrderID:        d.OrderID,
		ErrorMessage:   d.ErrorMessage,
		PreviousStatus: previous,
	}
}

// DocumentCancelledEvent is published when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID      `json:"document_id"`
	OrderID        uuid.UUID      `json:"order_id"`
	PreviousStatus DocumentStatus `json:"previous_status"`
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(d *SalesDocument, previous DocumentStatus) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeDocumentCancelled,
			AggregateTypeSalesDocument,
			d.ID,
			d.TenantID,
		),
		DocumentID:     d.ID,
		OrderID:        d.OrderID,
		PreviousStatus: previous,
	}
}
