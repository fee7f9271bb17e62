package inventory

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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
	products := r.Group("/products")
	{
		products.GET("", h.List)
		products.POST("", h.Create)
		products.GET("/low-stock", h.LowStock)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.DELETE("/:id", h.Delete)
		products.POST("/:id/stock", h.AdjustStock)
	}
}

type productView struct {
	*Product
	IsLowStock bool `json:"is_low_stock"`
}

func view(p *Product) productView {
	return productView{Product: p, IsLowStock: p.IsLowStock()}
}

func views(products []Product) []productView {
	out := make([]productView, len(products))
	for i := range products {
		out[i] = view(&products[i])
	}
	return out
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	category := Category(c.Query("category"))
	if category != "" && !category.Valid() {
		writeError(c, ErrInvalidCategory)
		return
	}
	products, err := h.service.List(c.Request.Context(), scope, category)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"products": views(products)})
}

func (h *Handler) LowStock(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	products, err := h.service.LowStock(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"products": views(products)})
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	p, err := h.service.Create(c.Request.Context(), scope, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"product": view(p)})
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
	p, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"product": view(p)})
}

func (h *Handler) Update(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	p, err := h.service.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"product": view(p)})
}

func (h *Handler) Delete(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, id); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *Handler) AdjustStock(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "delta is required")
		return
	}
	p, err := h.service.AdjustStock(c.Request.Context(), scope, id, req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"product": view(p)})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidCategory):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrDuplicateSKU):
		response.Error(c, http.StatusConflict, "DUPLICATE_SKU", err.Error())
	case errors.Is(err, ErrNegativeStock), errors.Is(err, ErrInsufficientStock):
		response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Internal(c, err)
	}
}
