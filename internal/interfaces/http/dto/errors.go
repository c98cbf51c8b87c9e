package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Tenant error codes
const (
	// ErrCodeTenantRequired is used when the X-Tenant-ID header is missing
	ErrCodeTenantRequired = "ERR_TENANT_REQUIRED"
	// ErrCodeTenantInvalid is used when the X-Tenant-ID header is not a UUID
	ErrCodeTenantInvalid = "ERR_TENANT_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// ERP document error codes
const (
	// ErrCodeErpConfigMissing is used when the tenant has no active ERP configuration
	ErrCodeErpConfigMissing = "ERR_ERP_CONFIG_MISSING"
	// ErrCodeErpTemplateMissing is used when neither a template nor field mappings exist
	ErrCodeErpTemplateMissing = "ERR_ERP_TEMPLATE_MISSING"
	// ErrCodeErpDocumentNotFound is used when a sales document does not exist for the tenant
	ErrCodeErpDocumentNotFound = "ERR_ERP_DOCUMENT_NOT_FOUND"
	// ErrCodeErpDocumentAlreadySent is used when sending a document that is already in the ERP
	ErrCodeErpDocumentAlreadySent = "ERR_ERP_DOCUMENT_ALREADY_SENT"
	// ErrCodeErpDocumentCannotCancel is used when cancelling a sent document
	ErrCodeErpDocumentCannotCancel = "ERR_ERP_DOCUMENT_CANNOT_CANCEL"
	// ErrCodeErpDocumentExists is used when an order already has an active document
	ErrCodeErpDocumentExists = "ERR_ERP_DOCUMENT_EXISTS"
	// ErrCodeErpDocumentBusy is used when a send or cancel finds the order lock held
	ErrCodeErpDocumentBusy = "ERR_ERP_DOCUMENT_BUSY"
	// ErrCodeErpGatewayNotRegistered is used when no gateway serves the configured ERP type
	ErrCodeErpGatewayNotRegistered = "ERR_ERP_GATEWAY_NOT_REGISTERED"
	// ErrCodeErpGenerationInProgress is used when another generation holds the order lock
	ErrCodeErpGenerationInProgress = "ERR_ERP_GENERATION_IN_PROGRESS"
	// ErrCodeErpInvalidStatus is used for an unknown document status filter
	ErrCodeErpInvalidStatus = "ERR_ERP_INVALID_DOCUMENT_STATUS"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Scheduler error codes
const (
	// ErrCodeSchedulerUnavailable is used when the batch scheduler is not running
	ErrCodeSchedulerUnavailable = "ERR_SCHEDULER_UNAVAILABLE"
	// ErrCodeTooManyRequests is used when the job queue is full
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Tenant errors -> 400 Bad Request
	ErrCodeTenantRequired: http.StatusBadRequest,
	ErrCodeTenantInvalid:  http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// ERP document errors
	ErrCodeErpConfigMissing:        http.StatusUnprocessableEntity,
	ErrCodeErpTemplateMissing:      http.StatusUnprocessableEntity,
	ErrCodeErpDocumentNotFound:     http.StatusNotFound,
	ErrCodeErpDocumentAlreadySent:  http.StatusConflict,
	ErrCodeErpDocumentCannotCancel: http.StatusConflict,
	ErrCodeErpDocumentExists:       http.StatusConflict,
	ErrCodeErpDocumentBusy:         http.StatusConflict,
	ErrCodeErpGatewayNotRegistered: http.StatusUnprocessableEntity,
	ErrCodeErpGenerationInProgress: http.StatusConflict,
	ErrCodeErpInvalidStatus:        http.StatusBadRequest,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Scheduler errors
	ErrCodeSchedulerUnavailable: http.StatusServiceUnavailable,
	ErrCodeTooManyRequests:      http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API codes above
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ORDER_NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"TENANT_MISMATCH":      ErrCodeBusinessRule,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"ERP_CONFIG_MISSING":          ErrCodeErpConfigMissing,
	"ERP_TEMPLATE_MISSING":        ErrCodeErpTemplateMissing,
	"ERP_DOCUMENT_NOT_FOUND":      ErrCodeErpDocumentNotFound,
	"ERP_DOCUMENT_ALREADY_SENT":   ErrCodeErpDocumentAlreadySent,
	"ERP_DOCUMENT_CANNOT_CANCEL":  ErrCodeErpDocumentCannotCancel,
	"ERP_DOCUMENT_EXISTS":         ErrCodeErpDocumentExists,
	"ERP_DOCUMENT_BUSY":           ErrCodeErpDocumentBusy,
	"ERP_GATEWAY_NOT_REGISTERED":  ErrCodeErpGatewayNotRegistered,
	"ERP_GENERATION_IN_PROGRESS":  ErrCodeErpGenerationInProgress,
	"ERP_INVALID_DOCUMENT_STATUS": ErrCodeErpInvalidStatus,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
