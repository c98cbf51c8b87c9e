package dto

import (
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/google/uuid"
)

// ErpDocumentListRequest represents query params of the document list
type ErpDocumentListRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING SENT FAILED CANCELLED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// SendSelectedRequest lists documents to send
type SendSelectedRequest struct {
	DocumentIDs []uuid.UUID `json:"document_ids" binding:"required,min=1,max=500"`
}

// GenerateBatchRequest lists orders to generate documents for
type GenerateBatchRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1,max=500"`
}

// ErpDocumentResponse is the API view of a sales document
type ErpDocumentResponse struct {
	ID              uuid.UUID           `json:"id"`
	TenantID        uuid.UUID           `json:"tenant_id"`
	OrderID         uuid.UUID           `json:"order_id"`
	ErpConfigID     uuid.UUID           `json:"erp_config_id"`
	ErpType         string              `json:"erp_type"`
	Status          string              `json:"status"`
	DocumentDate    string              `json:"document_date"`
	MarketplaceType string              `json:"marketplace_type"`
	CustomerCode    string              `json:"customer_code,omitempty"`
	CustomerName    string              `json:"customer_name,omitempty"`
	TotalAmount     string              `json:"total_amount"`
	Lines           []map[string]string `json:"lines"`
	ErpDocumentID   string              `json:"erp_document_id,omitempty"`
	SentAt          *time.Time          `json:"sent_at,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
	CanRetry        bool                `json:"can_retry"`
	CanCancel       bool                `json:"can_cancel"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToErpDocumentResponse converts a domain document
func ToErpDocumentResponse(doc *erp.SalesDocument) ErpDocumentResponse {
	lines := make([]map[string]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, map[string]string(line))
	}
	return ErpDocumentResponse{
		ID:              doc.ID,
		TenantID:        doc.TenantID,
		OrderID:         doc.OrderID,
		ErpConfigID:     doc.ErpConfigID,
		ErpType:         string(doc.ErpType),
		Status:          doc.Status.String(),
		DocumentDate:    doc.DocumentDate.Format("2006-01-02"),
		MarketplaceType: doc.MarketplaceType.String(),
		CustomerCode:    doc.CustomerCode,
		CustomerName:    doc.CustomerName,
		TotalAmount:     doc.TotalAmount.String(),
		Lines:           lines,
		ErpDocumentID:   doc.ErpDocumentID,
		SentAt:          doc.SentAt,
		ErrorMessage:    doc.ErrorMessage,
		CanRetry:        doc.CanRetry(),
		CanCancel:       doc.CanCancel(),
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

// ToErpDocumentResponses converts a page of documents
func ToErpDocumentResponses(docs []*erp.SalesDocument) []ErpDocumentResponse {
	out := make([]ErpDocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToErpDocumentResponse(doc))
	}
	return out
}

// PendingOrderResponse is an order that has no active document yet
type PendingOrderResponse struct {
	ID                 uuid.UUID  `json:"id"`
	MarketplaceType    string     `json:"marketplace_type"`
	MarketplaceOrderID string     `json:"marketplace_order_id"`
	Status             string     `json:"status"`
	OrderedAt          *time.Time `json:"ordered_at,omitempty"`
	TotalAmount        string     `json:"total_amount"`
	DeliveryFee        string     `json:"delivery_fee"`
	BuyerName          string     `json:"buyer_name,omitempty"`
	ItemCount          int        `json:"item_count"`
}

// ToPendingOrderResponses converts orders without a document
func ToPendingOrderResponses(orders []order.Order) []PendingOrderResponse {
	out := make([]PendingOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, PendingOrderResponse{
			ID:                 o.ID,
			MarketplaceType:    o.MarketplaceType.String(),
			MarketplaceOrderID: o.MarketplaceOrderID,
			Status:             string(o.Status),
			OrderedAt:          o.OrderedAt,
			TotalAmount:        o.TotalAmount.String(),
			DeliveryFee:        o.DeliveryFee.String(),
			BuyerName:          o.BuyerName,
			ItemCount:          len(o.Items),
		})
	}
	return out
}
