package task

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
	tasks := r.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("", h.Create)
		tasks.GET("/:id", h.Get)
		tasks.PATCH("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
		tasks.POST("/:id/status", h.ChangeStatus)
		tasks.POST("/:id/deductions", h.AddDeduction)
		tasks.DELETE("/:id/deductions/:deductionId", h.RemoveDeduction)
	}
}

// List supports ?worker_id=&status=&from=&to= filters.
func (h *Handler) List(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var f ListFilter
	if f.WorkerID, ok = utils.OptionalUUIDQuery(c, "worker_id"); !ok {
		return
	}
	if f.From, ok = utils.OptionalDateQuery(c, "from"); !ok {
		return
	}
	if f.To, ok = utils.OptionalDateQuery(c, "to"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		st := Status(raw)
		if !st.Valid() {
			response.BadRequest(c, "unknown status")
			return
		}
		f.Status = &st
	}

	tasks, err := h.service.List(c.Request.Context(), scope, f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"tasks": tasks})
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "worker_id, project_id and date are required")
		return
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	t, err := h.service.Create(c.Request.Context(), scope, CreateInput{
		WorkerID:    req.WorkerID,
		ProjectID:   req.ProjectID,
		Date:        date,
		Description: req.Description,
		LateReason:  req.LateReason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"task": t})
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
	t, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"task": t, "net_amount": t.Net(), "next_statuses": NextStatuses(t.Status)})
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
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	t, err := h.service.UpdateDescription(c.Request.Context(), scope, id, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"task": t})
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

func (h *Handler) ChangeStatus(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	t, err := h.service.ChangeStatus(c.Request.Context(), scope, id, StatusInput{Status: req.Status, DelayReason: req.DelayReason})
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"task": t})
}

func (h *Handler) AddDeduction(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req deductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "amount and reason are required")
		return
	}
	d, err := h.service.AddDeduction(c.Request.Context(), scope, id, DeductionInput{Amount: req.Amount, Reason: req.Reason})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"deduction": d})
}

func (h *Handler) RemoveDeduction(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return
	}
	deductionID, ok := utils.UUIDParam(c, "deductionId")
	if !ok {
		return
	}
	if err := h.service.RemoveDeduction(c.Request.Context(), scope, id, deductionID); err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrLateReasonRequired),
		errors.Is(err, ErrDelayReasonRequired),
		errors.Is(err, ErrInvalidDeduction),
		errors.Is(err, ErrUnknownStatus):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDeductionNotFound),
		errors.Is(err, ErrWorkerNotFound), errors.Is(err, ErrProjectNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Internal(c, err)
	}
}
