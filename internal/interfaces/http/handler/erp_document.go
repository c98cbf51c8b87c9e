package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	apperp "github.com/erpbridge/backend/internal/application/erp"
	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/domain/order"
	"github.com/erpbridge/backend/internal/domain/shared"
	"github.com/erpbridge/backend/internal/infrastructure/scheduler"
	"github.com/erpbridge/backend/internal/interfaces/http/dto"
	"github.com/erpbridge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentQuerier reads sales documents
type DocumentQuerier interface {
	List(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) (shared.Paginated[*erp.SalesDocument], error)
	Get(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error)
}

// DocumentGenerator creates sales documents from orders
type DocumentGenerator interface {
	Generate(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error)
	Regenerate(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error)
	GenerateForOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) *apperp.BulkGenerationResult
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error)
	OrdersWithoutDocument(ctx context.Context, tenantID uuid.UUID, page shared.PageRequest) (shared.Paginated[order.Order], error)
}

// DocumentDispatcher sends and cancels sales documents
type DocumentDispatcher interface {
	SendOne(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error)
	SendAllPending(ctx context.Context, tenantID uuid.UUID) (*apperp.BatchSendResult, error)
	SendSelected(ctx context.Context, tenantID uuid.UUID, documentIDs []uuid.UUID) (*apperp.BatchSendResult, error)
	Cancel(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error)
}

// BatchRunner runs the automatic batch for one tenant
type BatchRunner interface {
	RunForTenant(ctx context.Context, tenantID uuid.UUID) (*apperp.AutoBatchSummary, error)
}

// BatchJobQueue queues batch runs on the scheduler and reports their history
type BatchJobQueue interface {
	TriggerTenant(tenantID uuid.UUID) (*scheduler.ErpBatchJob, error)
	GetJobHistoryByTenant(tenantID uuid.UUID, limit int) []scheduler.ErpBatchJob
}

const defaultJobHistoryLimit = 20

// ErpDocumentHandler serves the ERP sales document API
type ErpDocumentHandler struct {
	BaseHandler
	queries    DocumentQuerier
	generation DocumentGenerator
	dispatch   DocumentDispatcher
	batch      BatchRunner
	jobs       BatchJobQueue
}

// NewErpDocumentHandler creates the handler. jobs may be nil when the scheduler is disabled.
func NewErpDocumentHandler(
	queries DocumentQuerier,
	generation DocumentGenerator,
	dispatch DocumentDispatcher,
	batch BatchRunner,
	jobs BatchJobQueue,
) *ErpDocumentHandler {
	return &ErpDocumentHandler{
		queries:    queries,
		generation: generation,
		dispatch:   dispatch,
		batch:      batch,
		jobs:       jobs,
	}
}

// List returns a page of documents, optionally filtered by status
// GET /api/v1/erp/documents?status=&page=&page_size=
func (h *ErpDocumentHandler) List(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req dto.ErpDocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := erp.DocumentFilter{Page: shared.PageRequest{Page: req.Page, PageSize: req.PageSize}}
	if req.Status != "" {
		status := erp.DocumentStatus(req.Status)
		filter.Status = &status
	}

	page, err := h.queries.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToErpDocumentResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Get returns one document
// GET /api/v1/erp/documents/:id
func (h *ErpDocumentHandler) Get(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	documentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.queries.Get(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToErpDocumentResponse(doc))
}

// Cancel cancels a PENDING or FAILED document
// DELETE /api/v1/erp/documents/:id
func (h *ErpDocumentHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	documentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.dispatch.Cancel(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToErpDocumentResponse(doc))
}

// Send sends one document to the ERP. A gateway failure is not an HTTP
// error: the document comes back FAILED with its error message.
// POST /api/v1/erp/documents/:id/send
func (h *ErpDocumentHandler) Send(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	documentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.dispatch.SendOne(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToErpDocumentResponse(doc))
}

// SendAll sends every PENDING document of the tenant
// POST /api/v1/erp/documents/send-all
func (h *ErpDocumentHandler) SendAll(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	result, err := h.dispatch.SendAllPending(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SendSelected sends the listed documents that are PENDING or FAILED
// POST /api/v1/erp/documents/send-selected
func (h *ErpDocumentHandler) SendSelected(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req dto.SendSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.dispatch.SendSelected(c.Request.Context(), tenantID, req.DocumentIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Generate returns the order's active document, creating it when missing
// POST /api/v1/erp/documents/generate/:orderId
func (h *ErpDocumentHandler) Generate(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	doc, err := h.generation.Generate(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToErpDocumentResponse(doc))
}

// Regenerate cancels the order's active document and generates a new one
// POST /api/v1/erp/documents/regenerate/:orderId
func (h *ErpDocumentHandler) Regenerate(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	doc, err := h.generation.Regenerate(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToErpDocumentResponse(doc))
}

// GenerateBatch generates documents for the listed orders
// POST /api/v1/erp/documents/generate-batch
func (h *ErpDocumentHandler) GenerateBatch(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req dto.GenerateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	h.Success(c, h.generation.GenerateForOrders(c.Request.Context(), tenantID, req.OrderIDs))
}

// Counts returns document counts per status plus NEED_DOCUMENT
// GET /api/v1/erp/documents/counts
func (h *ErpDocumentHandler) Counts(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	counts, err := h.generation.CountByStatus(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// PendingOrders lists eligible orders that have no active document
// GET /api/v1/erp/documents/pending-orders?page=&page_size=
func (h *ErpDocumentHandler) PendingOrders(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.generation.OrdersWithoutDocument(c.Request.Context(), tenantID, shared.PageRequest{Page: req.Page, PageSize: req.PageSize})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToPendingOrderResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// RunBatch runs the automatic batch for the caller's tenant and waits for it
// POST /api/v1/erp/batch/run
func (h *ErpDocumentHandler) RunBatch(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	summary, err := h.batch.RunForTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// QueueBatch queues a batch run on the scheduler and returns the job
// POST /api/v1/erp/batch/jobs
func (h *ErpDocumentHandler) QueueBatch(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeSchedulerUnavailable, "ERP batch scheduler is disabled")
		return
	}

	job, err := h.jobs.TriggerTenant(tenantID)
	switch {
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeSchedulerUnavailable, err.Error())
	case errors.Is(err, scheduler.ErrJobAlreadyQueued):
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, err.Error())
	case errors.Is(err, scheduler.ErrJobQueueFull):
		h.Error(c, http.StatusTooManyRequests, dto.ErrCodeTooManyRequests, err.Error())
	case err != nil:
		h.HandleError(c, err)
	default:
		h.Accepted(c, job)
	}
}

// Jobs returns the tenant's recent batch jobs, newest first
// GET /api/v1/erp/batch/jobs?limit=
func (h *ErpDocumentHandler) Jobs(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	if h.jobs == nil {
		h.Success(c, []scheduler.ErpBatchJob{})
		return
	}

	limit := defaultJobHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	h.Success(c, h.jobs.GetJobHistoryByTenant(tenantID, limit))
}

// RegisterRoutes mounts the handler on an /api/v1/erp group
func (h *ErpDocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.GET("", h.List)
	docs.GET("/counts", h.Counts)
	docs.GET("/pending-orders", h.PendingOrders)
	docs.POST("/send-all", h.SendAll)
	docs.POST("/send-selected", h.SendSelected)
	docs.POST("/generate-batch", h.GenerateBatch)
	docs.POST("/generate/:orderId", h.Generate)
	docs.POST("/regenerate/:orderId", h.Regenerate)
	docs.GET("/:id", h.Get)
	docs.DELETE("/:id", h.Cancel)
	docs.POST("/:id/send", h.Send)

	batch := rg.Group("/batch")
	batch.POST("/run", h.RunBatch)
	batch.POST("/jobs", h.QueueBatch)
	batch.GET("/jobs", h.Jobs)
}
