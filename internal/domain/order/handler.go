package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bizops/internal/domain/billing"
	"bizops/internal/pkg/response"
	"bizops/internal/pkg/utils"
	"bizops/internal/tenant"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.GET("", h.ListCatalog)
		services.POST("", h.CreateCatalog)
		services.PUT("/:id", h.UpdateCatalog)
		services.DELETE("/:id", h.DeleteCatalog)
	}

	orders := r.Group("/orders")
	{
		orders.GET("", h.List)
		orders.POST("", h.Create)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/status", h.ChangeStatus)
		orders.POST("/:id/payments", h.RecordPayment)
		orders.PATCH("/:id/workers/:workerId", h.UpdateWorkerStatus)
	}
}

type createRequest struct {
	ClientID       uuid.UUID         `json:"client_id" binding:"required"`
	Services       []LineInput       `json:"services"`
	Workers        []AssignmentInput `json:"workers"`
	Description    string            `json:"description"`
	DueDate        string            `json:"due_date"`
	CustomFields   []FieldInput      `json:"custom_fields"`
	InitialPayment *decimal.Decimal  `json:"initial_payment"`
	PaymentMethod  billing.Method    `json:"payment_method"`
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "client_id is required")
		return
	}
	in := CreateInput{
		ClientID:       req.ClientID,
		Services:       req.Services,
		Workers:        req.Workers,
		Description:    req.Description,
		CustomFields:   req.CustomFields,
		InitialPayment: req.InitialPayment,
		PaymentMethod:  req.PaymentMethod,
	}
	if req.DueDate != "" {
		due, err := utils.ParseDate(req.DueDate)
		if err != nil {
			response.BadRequest(c, "due_date must be YYYY-MM-DD")
			return
		}
		in.DueDate = &due
	}

	o, err := h.service.CreateOrder(c.Request.Context(), scope, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"order": o})
}

// List supports ?client_id= and ?status= filters.
func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var f ListFilter
	if f.ClientID, ok = utils.OptionalUUIDQuery(c, "client_id"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		st := Status(raw)
		if !st.Valid() {
			writeError(c, ErrInvalidStatus)
			return
		}
		f.Status = &st
	}
	orders, err := h.service.List(c.Request.Context(), scope, f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"orders": orders})
}

func (h *Handler) Get(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	o, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"order": o})
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var in StatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	o, err := h.service.ChangeStatus(c.Request.Context(), scope, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"order": o})
}

func (h *Handler) RecordPayment(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var in PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "amount and payment_method are required")
		return
	}
	receipt, err := h.service.RecordPayment(c.Request.Context(), scope, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, receipt)
}

func (h *Handler) UpdateWorkerStatus(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	workerID, ok := utils.UUIDParam(c, "workerId")
	if !ok {
		return
	}
	var req struct {
		Status WorkerStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	ow, err := h.service.UpdateWorkerStatus(c.Request.Context(), scope, id, workerID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"assignment": ow})
}

func (h *Handler) ListCatalog(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	services, err := h.service.ListCatalogServices(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"services": services})
}

func (h *Handler) CreateCatalog(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var in CatalogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	cs, err := h.service.CreateCatalogService(c.Request.Context(), scope, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"service": cs})
}

func (h *Handler) UpdateCatalog(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var in CatalogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	cs, err := h.service.UpdateCatalogService(c.Request.Context(), scope, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"service": cs})
}

func (h *Handler) DeleteCatalog(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCatalogService(c.Request.Context(), scope, id); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	if billing.WriteError(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNoServices), errors.Is(err, ErrNoWorkers),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInitialPayment), errors.Is(err, ErrMethodRequired):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrClientNotFound),
		errors.Is(err, ErrWorkerNotFound), errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrAssignmentNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Internal(c, err)
	}
}
