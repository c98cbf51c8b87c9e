package erp

import "github.com/erpbridge/backend/internal/domain/shared"

// Error codes surfaced to callers
const (
	CodeConfigMissing        = "ERP_CONFIG_MISSING"
	CodeTemplateMissing      = "ERP_TEMPLATE_MISSING"
	CodeDocumentNotFound     = "ERP_DOCUMENT_NOT_FOUND"
	CodeDocumentAlreadySent  = "ERP_DOCUMENT_ALREADY_SENT"
	CodeDocumentCannotCancel = "ERP_DOCUMENT_CANNOT_CANCEL"
	CodeDocumentExists       = "ERP_DOCUMENT_EXISTS"
	CodeDocumentBusy         = "ERP_DOCUMENT_BUSY"
	CodeGatewayNotRegistered = "ERP_GATEWAY_NOT_REGISTERED"
	CodeGenerationInProgress = "ERP_GENERATION_IN_PROGRESS"
	CodeInvalidStatus        = "ERP_INVALID_DOCUMENT_STATUS"
)

var (
	ErrConfigMissing         = shared.NewDomainError(CodeConfigMissing, "No active ERP configuration for tenant")
	ErrTemplateMissing       = shared.NewDomainError(CodeTemplateMissing, "No active sales template or field mappings for ERP configuration")
	ErrDocumentNotFound      = shared.NewDomainError(CodeDocumentNotFound, "ERP sales document not found")
	ErrDocumentAlreadySent   = shared.NewDomainError(CodeDocumentAlreadySent, "ERP sales document was already sent")
	ErrDocumentCannotCancel  = shared.NewDomainError(CodeDocumentCannotCancel, "Sent ERP sales document cannot be cancelled")
	ErrDocumentExists        = shared.NewDomainError(CodeDocumentExists, "An active ERP sales document already exists for the order")
	ErrDocumentBusy          = shared.NewDomainError(CodeDocumentBusy, "Another operation on the order's ERP sales document is in progress")
	ErrGatewayNotRegistered  = shared.NewDomainError(CodeGatewayNotRegistered, "No ERP gateway registered for ERP type")
	ErrGenerationInProgress  = shared.NewDomainError(CodeGenerationInProgress, "Document generation for the order is already in progress")
	ErrInvalidDocumentStatus = shared.NewDomainError(CodeInvalidStatus, "Unknown ERP sales document status")
)
