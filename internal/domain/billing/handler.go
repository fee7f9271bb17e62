package billing

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
	r.GET("/payments", h.List)
}

// List returns the payments of one document: /payments?kind=order&document_id=...
func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	kind := DocumentKind(c.Query("kind"))
	if _, err := kind.Table(); err != nil {
		WriteError(c, err)
		return
	}
	id, ok := utils.OptionalUUIDQuery(c, "document_id")
	if !ok {
		return
	}
	if id == nil {
		response.BadRequest(c, "document_id is required")
		return
	}
	payments, err := h.service.ListPayments(c.Request.Context(), scope, kind, *id)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.OK(c, gin.H{"payments": payments})
}

// WriteError answers for billing errors and reports whether err was one of them.
func WriteError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrUnknownKind):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrOverpayment):
		response.Error(c, http.StatusUnprocessableEntity, "OVERPAYMENT", err.Error())
	case errors.Is(err, ErrRevisionConflict):
		response.Error(c, http.StatusConflict, "REVISION_CONFLICT", err.Error())
	case errors.Is(err, ErrDocumentNotFound):
		response.NotFound(c, err.Error())
	default:
		return false
	}
	return true
}
