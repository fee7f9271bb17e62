package upload

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

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
	uploads := r.Group("/uploads")
	{
		uploads.POST("", h.Upload)
		uploads.GET("", h.List)
		uploads.GET("/:id", h.Get)
		uploads.DELETE("/:id", h.Delete)
	}
}

// Upload takes multipart field "file" and an optional "client_id" form value.
func (h *Handler) Upload(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "no file provided")
		return
	}
	var clientID *uuid.UUID
	if raw := strings.TrimSpace(c.PostForm("client_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client_id")
			return
		}
		clientID = &id
	}

	u, err := h.service.Upload(c.Request.Context(), scope, clientID, fileHeader)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"upload": u})
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	clientID, ok := utils.OptionalUUIDQuery(c, "client_id")
	if !ok {
		return
	}
	uploads, err := h.service.List(c.Request.Context(), scope, clientID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"uploads": uploads})
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
	u, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"upload": u})
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

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrUploadNotFound), errors.Is(err, ErrClientNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Internal(c, err)
	}
}
