package client

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
	clients := r.Group("/clients")
	{
		clients.GET("", h.List)
		clients.POST("", h.Create)
		clients.GET("/:id", h.Get)
		clients.PUT("/:id", h.Update)
		clients.DELETE("/:id", h.Delete)
		clients.POST("/:id/fields", h.AddField)
		clients.DELETE("/:id/fields/:fieldId", h.RemoveField)
	}
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	clients, err := h.service.List(c.Request.Context(), scope, c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"clients": clients})
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
	client, err := h.service.Create(c.Request.Context(), scope, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"client": client})
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
	client, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"client": client})
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
	client, err := h.service.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"client": client})
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

func (h *Handler) AddField(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var in FieldInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	field, err := h.service.AddField(c.Request.Context(), scope, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"field": field})
}

func (h *Handler) RemoveField(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	fieldID, ok := utils.UUIDParam(c, "fieldId")
	if !ok {
		return
	}
	if err := h.service.RemoveField(c.Request.Context(), scope, id, fieldID); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidFieldType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFieldNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrHasDocuments):
		response.Error(c, http.StatusConflict, "CLIENT_HAS_DOCUMENTS", err.Error())
	default:
		response.Internal(c, err)
	}
}
