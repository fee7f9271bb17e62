package sales

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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
	so := r.Group("/sales-orders")
	{
		so.GET("", h.List)
		so.POST("", h.Create)
		so.POST("/quote", h.Quote)
		so.GET("/:id", h.Get)
		so.POST("/:id/payments", h.RecordPayment)
	}
}

func (h *Handler) Quote(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var req struct {
		Items []ItemInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	cart, err := h.service.Quote(c.Request.Context(), scope, req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"lines": cart.Lines(), "total_amount": cart.Total()})
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	so, err := h.service.CreateSalesOrder(c.Request.Context(), scope, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"sales_order": so})
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var f ListFilter
	if f.ClientID, ok = utils.OptionalUUIDQuery(c, "client_id"); !ok {
		return
	}
	if raw := c.Query("payment_status"); raw != "" {
		ps := billing.PaymentStatus(raw)
		if !ps.Valid() {
			response.BadRequest(c, "payment_status must be unpaid, partially_paid or paid")
			return
		}
		f.PaymentStatus = &ps
	}
	orders, err := h.service.List(c.Request.Context(), scope, f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"sales_orders": orders})
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
	so, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"sales_order": so})
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

func writeError(c *gin.Context, err error) {
	if billing.WriteError(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidCustomItem),
		errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrLineNotFound):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrOutOfStock), errors.Is(err, ErrNotEnoughStock):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrClientNotFound), errors.Is(err, ErrProductNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Internal(c, err)
	}
}
