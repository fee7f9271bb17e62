package workforce

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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

type assignRequest struct {
	ProjectID uuid.UUID        `json:"project_id" binding:"required"`
	Rate      *decimal.Decimal `json:"rate"`
}

type rateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	workers := r.Group("/workers")
	{
		workers.GET("", h.ListWorkers)
		workers.POST("", h.CreateWorker)
		workers.GET("/:id", h.GetWorker)
		workers.PUT("/:id", h.UpdateWorker)
		workers.DELETE("/:id", h.DeleteWorker)
		workers.POST("/:id/projects", h.AssignProject)
		workers.PUT("/:id/projects/:projectId", h.UpdateRate)
		workers.DELETE("/:id/projects/:projectId", h.UnassignProject)
	}

	projects := r.Group("/projects")
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.PUT("/:id", h.UpdateProject)
		projects.DELETE("/:id", h.DeleteProject)
	}
}

func (h *Handler) ListWorkers(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	workers, err := h.service.ListWorkers(c.Request.Context(), scope)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.OK(c, gin.H{"workers": workers})
}

func (h *Handler) CreateWorker(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var req WorkerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	w, err := h.service.CreateWorker(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"worker": w})
}

func (h *Handler) GetWorker(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	w, err := h.service.GetWorker(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"worker": w})
}

func (h *Handler) UpdateWorker(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req WorkerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	w, err := h.service.UpdateWorker(c.Request.Context(), scope, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"worker": w})
}

func (h *Handler) DeleteWorker(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteWorker(c.Request.Context(), scope, id); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *Handler) AssignProject(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "project_id is required")
		return
	}
	rate, err := h.service.AssignProject(c.Request.Context(), scope, id, req.ProjectID, req.Rate)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"rate": rate})
}

func (h *Handler) UpdateRate(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	projectID, ok := utils.UUIDParam(c, "projectId")
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	rate, err := h.service.UpdateRate(c.Request.Context(), scope, id, projectID, req.Rate)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"rate": rate})
}

func (h *Handler) UnassignProject(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	projectID, ok := utils.UUIDParam(c, "projectId")
	if !ok {
		return
	}
	if err := h.service.UnassignProject(c.Request.Context(), scope, id, projectID); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *Handler) ListProjects(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	projects, err := h.service.ListProjects(c.Request.Context(), scope)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.OK(c, gin.H{"projects": projects})
}

func (h *Handler) CreateProject(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var req ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	p, err := h.service.CreateProject(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"project": p})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	p, err := h.service.UpdateProject(c.Request.Context(), scope, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"project": p})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProject(c.Request.Context(), scope, id); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNegativeRate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrWorkerNotFound), errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrRateNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrAlreadyAssigned):
		response.Error(c, http.StatusConflict, "ALREADY_ASSIGNED", err.Error())
	default:
		response.Internal(c, err)
	}
}
