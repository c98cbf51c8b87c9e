package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperp "github.com/erpbridge/backend/internal/application/erp"
	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/erpbridge/backend/internal/infrastructure/scheduler"
	"github.com/erpbridge/backend/internal/interfaces/http/dto"
	"github.com/erpbridge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	tenantID   uuid.UUID
	queries    *mockQuerier
	generation *mockGenerator
	dispatch   *mockDispatcher
	batch      *mockBatchRunner
	jobs       *mockJobQueue
	router     *gin.Engine
}

func newHandlerFixture(t *testing.T, withJobs bool) *handlerFixture {
	t.Helper()
	middleware.SetupValidator()

	f := &handlerFixture{
		tenantID:   uuid.New(),
		queries:    new(mockQuerier),
		generation: new(mockGenerator),
		dispatch:   new(mockDispatcher),
		batch:      new(mockBatchRunner),
		jobs:       new(mockJobQueue),
	}

	var jobs BatchJobQueue
	if withJobs {
		jobs = f.jobs
	}
	h := NewErpDocumentHandler(f.queries, f.generation, f.dispatch, f.batch, jobs)

	f.router = gin.New()
	f.router.Use(middleware.RequestID())
	api := f.router.Group("/api/v1/erp")
	api.Use(middleware.Tenant(middleware.DefaultTenantConfig()))
	h.RegisterRoutes(api)

	t.Cleanup(func() {
		f.queries.AssertExpectations(t)
		f.generation.AssertExpectations(t)
		f.dispatch.AssertExpectations(t)
		f.batch.AssertExpectations(t)
		f.jobs.AssertExpectations(t)
	})
	return f
}

func (f *handlerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, f.tenantID.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func testDocument(t *testing.T, tenantID uuid.UUID) *erp.SalesDocument {
	t.Helper()
	o, err := order.NewOrder(tenantID, order.MarketplaceCoupang, "CP-9")
	require.NoError(t, err)
	orderedAt := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	o.OrderedAt = &orderedAt

	config, err := erp.NewErpConfig(tenantID, erp.ErpTypeEcount, "COM", "user", "key")
	require.NoError(t, err)

	doc, err := erp.NewSalesDocument(o, config, erp.Lines{{erp.FieldCustomer: "C1", erp.FieldPrice: "11000"}})
	require.NoError(t, err)
	return doc
}

func TestErpDocumentHandler_List(t *testing.T) {
	f := newHandlerFixture(t, false)
	doc := testDocument(t, f.tenantID)
	failed := erp.DocumentStatusFailed

	f.queries.On("List", mock.Anything, f.tenantID, erp.DocumentFilter{
		Status: &failed,
		Page:   shared.PageRequest{Page: 2, PageSize: 10},
	}).Return(shared.NewPaginated([]*erp.SalesDocument{doc}, 11, shared.PageRequest{Page: 2, PageSize: 10}), nil)

	w := f.do(http.MethodGet, "/api/v1/erp/documents?status=FAILED&page=2&page_size=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(11), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 2, env.Meta.TotalPages)

	var docs []dto.ErpDocumentResponse
	require.NoError(t, json.Unmarshal(env.Data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
	assert.Equal(t, "11000", docs[0].TotalAmount)
}

func TestErpDocumentHandler_List_InvalidStatus(t *testing.T) {
	f := newHandlerFixture(t, false)

	w := f.do(http.MethodGet, "/api/v1/erp/documents?status=DONE", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	f.queries.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestErpDocumentHandler_MissingTenant(t *testing.T) {
	f := newHandlerFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/erp/documents", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeTenantRequired, decode(t, w).Error.Code)
}

func TestErpDocumentHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		doc := testDocument(t, f.tenantID)
		f.queries.On("Get", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		w := f.do(http.MethodGet, "/api/v1/erp/documents/"+doc.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ErpDocumentResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		assert.Equal(t, "PENDING", resp.Status)
	})

	t.Run("not found", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		id := uuid.New()
		f.queries.On("Get", mock.Anything, f.tenantID, id).Return(nil, erp.ErrDocumentNotFound)

		w := f.do(http.MethodGet, "/api/v1/erp/documents/"+id.String(), nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, dto.ErrCodeErpDocumentNotFound, env.Error.Code)
		assert.NotEmpty(t, env.Error.RequestID)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newHandlerFixture(t, false)

		w := f.do(http.MethodGet, "/api/v1/erp/documents/not-a-uuid", nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidationFormat, decode(t, w).Error.Code)
	})
}

func TestErpDocumentHandler_Cancel(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		doc := testDocument(t, f.tenantID)
		require.NoError(t, doc.Cancel())
		f.dispatch.On("Cancel", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		w := f.do(http.MethodDelete, "/api/v1/erp/documents/"+doc.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ErpDocumentResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		assert.Equal(t, "CANCELLED", resp.Status)
	})

	t.Run("sent document", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		id := uuid.New()
		f.dispatch.On("Cancel", mock.Anything, f.tenantID, id).Return(nil, erp.ErrDocumentCannotCancel)

		w := f.do(http.MethodDelete, "/api/v1/erp/documents/"+id.String(), nil)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeErpDocumentCannotCancel, decode(t, w).Error.Code)
	})
}

func TestErpDocumentHandler_Send(t *testing.T) {
	t.Run("gateway failure returns the failed document", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		doc := testDocument(t, f.tenantID)
		require.NoError(t, doc.MarkFailed("login rejected"))
		f.dispatch.On("SendOne", mock.Anything, f.tenantID, doc.ID).Return(doc, nil)

		w := f.do(http.MethodPost, "/api/v1/erp/documents/"+doc.ID.String()+"/send", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ErpDocumentResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		assert.Equal(t, "FAILED", resp.Status)
		assert.Equal(t, "login rejected", resp.ErrorMessage)
		assert.True(t, resp.CanRetry)
	})

	t.Run("already sent", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		id := uuid.New()
		f.dispatch.On("SendOne", mock.Anything, f.tenantID, id).Return(nil, erp.ErrDocumentAlreadySent)

		w := f.do(http.MethodPost, "/api/v1/erp/documents/"+id.String()+"/send", nil)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeErpDocumentAlreadySent, decode(t, w).Error.Code)
	})

	t.Run("cancelled document is an invalid state", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		id := uuid.New()
		f.dispatch.On("SendOne", mock.Anything, f.tenantID, id).
			Return(nil, shared.NewDomainError(shared.ErrInvalidState.Code, "cannot send CANCELLED document"))

		w := f.do(http.MethodPost, "/api/v1/erp/documents/"+id.String()+"/send", nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, decode(t, w).Error.Code)
	})
}

func TestErpDocumentHandler_SendAll(t *testing.T) {
	f := newHandlerFixture(t, false)
	f.dispatch.On("SendAllPending", mock.Anything, f.tenantID).
		Return(&apperp.BatchSendResult{TotalCount: 3, SuccessCount: 2, FailCount: 1}, nil)

	w := f.do(http.MethodPost, "/api/v1/erp/documents/send-all", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var result apperp.BatchSendResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
}

func TestErpDocumentHandler_SendSelected(t *testing.T) {
	t.Run("sends listed ids", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		f.dispatch.On("SendSelected", mock.Anything, f.tenantID, ids).
			Return(&apperp.BatchSendResult{TotalCount: 1, SuccessCount: 1}, nil)

		w := f.do(http.MethodPost, "/api/v1/erp/documents/send-selected", dto.SendSelectedRequest{DocumentIDs: ids})

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty selection", func(t *testing.T) {
		f := newHandlerFixture(t, false)

		w := f.do(http.MethodPost, "/api/v1/erp/documents/send-selected", map[string]any{"document_ids": []string{}})

		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "document_ids", env.Error.Details[0].Field)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newHandlerFixture(t, false)

		w := f.do(http.MethodPost, "/api/v1/erp/documents/send-selected", map[string]any{"document_ids": []string{"x"}})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
	})
}

func TestErpDocumentHandler_Generate(t *testing.T) {
	t.Run("returns document", func(t *testing.T) {
		f := newHandlerFixture(t, false)
		doc := testDocument(t, f.tenantID)
		f.generation.On("Generate", mock.Anything, f.tenantID, doc.OrderID).Return(doc, nil)

		w := f.do(http.MethodPost, "/api/v1/erp/documents/generate/"+doc.OrderID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ErpDocumentResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		assert.Equal(t, doc.OrderID, resp.OrderID)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing config", erp.ErrConfigMissing, http.StatusUnprocessableEntity, dto.ErrCodeErpConfigMissing},
		{"missing template", erp.ErrTemplateMissing, http.StatusUnprocessableEntity, dto.ErrCodeErpTemplateMissing},
		{"lock held", erp.ErrGenerationInProgress, http.StatusConflict, dto.ErrCodeErpGenerationInProgress},
		{"unknown order", order.ErrOrderNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t, false)
			orderID := uuid.New()
			f.generation.On("Generate", mock.Anything, f.tenantID, orderID).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/erp/documents/generate/"+orderID.String(), nil)

			require.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotContains(t, env.Error.Message, "connection reset")
		})
	}
}

func TestErpDocumentHandler_Regenerate(t *testing.T) {
	f := newHandlerFixture(t, false)
	doc := testDocument(t, f.tenantID)
	f.generation.On("Regenerate", mock.Anything, f.tenantID, doc.OrderID).Return(doc, nil)

	w := f.do(http.MethodPost, "/api/v1/erp/documents/regenerate/"+doc.OrderID.String(), nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestErpDocumentHandler_GenerateBatch(t *testing.T) {
	f := newHandlerFixture(t, false)
	orderIDs := []uuid.UUID{uuid.New(), uuid.New()}
	docID := uuid.New()
	f.generation.On("GenerateForOrders", mock.Anything, f.tenantID, orderIDs).Return(&apperp.BulkGenerationResult{
		TotalCount:   2,
		SuccessCount: 1,
		FailCount:    1,
		Results: []apperp.GenerationResult{
			{OrderID: orderIDs[0], Success: true, DocumentID: &docID},
			{OrderID: orderIDs[1], Error: erp.ErrDocumentExists.Error()},
		},
	})

	w := f.do(http.MethodPost, "/api/v1/erp/documents/generate-batch", dto.GenerateBatchRequest{OrderIDs: orderIDs})

	require.Equal(t, http.StatusOK, w.Code)
	var result apperp.BulkGenerationResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, 1, result.FailCount)
	require.Len(t, result.Results, 2)
	assert.Equal(t, docID, *result.Results[0].DocumentID)
}

func TestErpDocumentHandler_Counts(t *testing.T) {
	f := newHandlerFixture(t, false)
	counts := map[string]int64{"PENDING": 2, "SENT": 5, "FAILED": 1, "CANCELLED": 0, apperp.NeedDocumentKey: 4}
	f.generation.On("CountByStatus", mock.Anything, f.tenantID).Return(counts, nil)

	w := f.do(http.MethodGet, "/api/v1/erp/documents/counts", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]int64
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, counts, got)
}

func TestErpDocumentHandler_PendingOrders(t *testing.T) {
	f := newHandlerFixture(t, false)
	o, err := order.NewOrder(f.tenantID, order.MarketplaceNaver, "NV-1")
	require.NoError(t, err)
	o.TotalAmount = decimal.NewFromInt(5000)
	page := shared.PageRequest{Page: 1, PageSize: 50}
	f.generation.On("OrdersWithoutDocument", mock.Anything, f.tenantID, page).
		Return(shared.NewPaginated([]order.Order{*o}, 1, page), nil)

	w := f.do(http.MethodGet, "/api/v1/erp/documents/pending-orders?page=1&page_size=50", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, int64(1), env.Meta.Total)
	var orders []dto.PendingOrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "NV-1", orders[0].MarketplaceOrderID)
	assert.Equal(t, "5000", orders[0].TotalAmount)
}

func TestErpDocumentHandler_RunBatch(t *testing.T) {
	f := newHandlerFixture(t, false)
	f.batch.On("RunForTenant", mock.Anything, f.tenantID).Return(&apperp.AutoBatchSummary{
		TenantID:             f.tenantID,
		AutoGenerateDocument: true,
		GeneratedCount:       3,
	}, nil)

	w := f.do(http.MethodPost, "/api/v1/erp/batch/run", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var summary apperp.AutoBatchSummary
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &summary))
	assert.Equal(t, 3, summary.GeneratedCount)
	assert.Equal(t, f.tenantID, summary.TenantID)
}

func TestErpDocumentHandler_QueueBatch(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		job := scheduler.NewErpBatchJob(f.tenantID, scheduler.JobTriggerManual)
		f.jobs.On("TriggerTenant", f.tenantID).Return(job, nil)

		w := f.do(http.MethodPost, "/api/v1/erp/batch/jobs", nil)

		require.Equal(t, http.StatusAccepted, w.Code)
		var got scheduler.ErpBatchJob
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, scheduler.JobStatusPending, got.Status)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"already queued", scheduler.ErrJobAlreadyQueued, http.StatusConflict},
		{"queue full", scheduler.ErrJobQueueFull, http.StatusTooManyRequests},
		{"not running", scheduler.ErrSchedulerNotRunning, http.StatusServiceUnavailable},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t, true)
			f.jobs.On("TriggerTenant", f.tenantID).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/erp/batch/jobs", nil)

			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("scheduler disabled", func(t *testing.T) {
		f := newHandlerFixture(t, false)

		w := f.do(http.MethodPost, "/api/v1/erp/batch/jobs", nil)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeSchedulerUnavailable, decode(t, w).Error.Code)
	})
}

func TestErpDocumentHandler_Jobs(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		history := []scheduler.ErpBatchJob{*scheduler.NewErpBatchJob(f.tenantID, scheduler.JobTriggerScheduled)}
		f.jobs.On("GetJobHistoryByTenant", f.tenantID, defaultJobHistoryLimit).Return(history)

		w := f.do(http.MethodGet, "/api/v1/erp/batch/jobs", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got []scheduler.ErpBatchJob
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, scheduler.JobTriggerScheduled, got[0].Trigger)
	})

	t.Run("explicit limit", func(t *testing.T) {
		f := newHandlerFixture(t, true)
		f.jobs.On("GetJobHistoryByTenant", f.tenantID, 5).Return([]scheduler.ErpBatchJob{})

		w := f.do(http.MethodGet, "/api/v1/erp/batch/jobs?limit=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		f := newHandlerFixture(t, true)

		w := f.do(http.MethodGet, "/api/v1/erp/batch/jobs?limit=0", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scheduler disabled", func(t *testing.T) {
		f := newHandlerFixture(t, false)

		w := f.do(http.MethodGet, "/api/v1/erp/batch/jobs", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(decode(t, w).Data))
	})
}
