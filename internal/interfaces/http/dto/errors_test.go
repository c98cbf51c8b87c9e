package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeTenantRequired, http.StatusBadRequest},
		{ErrCodeTenantInvalid, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeErpConfigMissing, http.StatusUnprocessableEntity},
		{ErrCodeErpTemplateMissing, http.StatusUnprocessableEntity},
		{ErrCodeErpDocumentNotFound, http.StatusNotFound},
		{ErrCodeErpDocumentAlreadySent, http.StatusConflict},
		{ErrCodeErpDocumentCannotCancel, http.StatusConflict},
		{ErrCodeErpDocumentExists, http.StatusConflict},
		{ErrCodeErpGatewayNotRegistered, http.StatusUnprocessableEntity},
		{ErrCodeErpGenerationInProgress, http.StatusConflict},
		{ErrCodeErpInvalidStatus, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeSchedulerUnavailable, http.StatusServiceUnavailable},
		{ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ORDER_NOT_FOUND", ErrCodeNotFound},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"TENANT_MISMATCH", ErrCodeBusinessRule},
		{"ERP_CONFIG_MISSING", ErrCodeErpConfigMissing},
		{"ERP_DOCUMENT_NOT_FOUND", ErrCodeErpDocumentNotFound},
		{"ERP_DOCUMENT_ALREADY_SENT", ErrCodeErpDocumentAlreadySent},
		{"ERP_GENERATION_IN_PROGRESS", ErrCodeErpGenerationInProgress},
		{"ERP_INVALID_DOCUMENT_STATUS", ErrCodeErpInvalidStatus},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesMapToKnownStatuses(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		t.Run(domainCode, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(apiCode, "ERR_"))
			_, ok := ErrorCodeHTTPStatus[apiCode]
			assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("ERP_DOCUMENT_NOT_FOUND", "ERP sales document not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeErpDocumentNotFound, resp.Error.Code)
	assert.Equal(t, "ERP sales document not found", resp.Error.Message)
	assert.Empty(t, resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "document_ids", Message: "This field is required"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "document_ids", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponseWithRequestID(ErrCodeErpDocumentExists, "exists", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeErpDocumentExists, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
	assert.False(t, decoded.Error.Timestamp.Before(before.Truncate(time.Second)))
	assert.NotContains(t, string(data), `"data"`)
	assert.NotContains(t, string(data), `"details"`)
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		page          int
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 1, 10, 10, 10},
		{101, 1, 10, 11, 10},
		{0, 1, 10, 0, 10},
		{9, 1, 10, 1, 10},
		{100, 1, 0, 5, 20},
		{100, 1, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}
