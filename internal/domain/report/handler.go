package report

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bizops/internal/pkg/response"
	"bizops/internal/pkg/utils"
	"bizops/internal/tenant"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/overview", h.Overview)
		reports.GET("/financial", h.Financial)
		reports.GET("/workers/:id", h.Worker)
		reports.GET("/workers/:id/pdf", h.WorkerPDF)
		reports.GET("/workers/:id/xlsx", h.WorkerXLSX)
		reports.GET("/workers/:id/whatsapp", h.WorkerWhatsApp)
	}
}

func (h *Handler) Overview(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	ov, err := h.service.Overview(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, ov)
}

// Financial reports the week containing ?date= (default today).
func (h *Handler) Financial(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	day, ok := dateQuery(c)
	if !ok {
		return
	}
	rep, err := h.service.WeeklyFinancial(c.Request.Context(), scope, day)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, rep)
}

func (h *Handler) Worker(c *gin.Context) {
	rep, ok := h.workerReport(c)
	if !ok {
		return
	}
	response.OK(c, rep)
}

func (h *Handler) WorkerPDF(c *gin.Context) {
	rep, ok := h.workerReport(c)
	if !ok {
		return
	}
	data, err := WorkerPDF(rep)
	if err != nil {
		response.Internal(c, err)
		return
	}
	attach(c, filename(rep, "pdf"), mimePDF, data)
}

func (h *Handler) WorkerXLSX(c *gin.Context) {
	rep, ok := h.workerReport(c)
	if !ok {
		return
	}
	data, err := WorkerXLSX(rep)
	if err != nil {
		response.Internal(c, err)
		return
	}
	attach(c, filename(rep, "xlsx"), mimeXLSX, data)
}

func (h *Handler) WorkerWhatsApp(c *gin.Context) {
	rep, ok := h.workerReport(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"message": WhatsAppMessage(rep), "link": WhatsAppLink(rep)})
}

func (h *Handler) workerReport(c *gin.Context) (*WorkerReport, bool) {
	scope, ok := tenant.Require(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.UUIDParam(c, "id")
	if !ok {
		return nil, false
	}
	day, ok := dateQuery(c)
	if !ok {
		return nil, false
	}
	rep, err := h.service.WorkerReport(c.Request.Context(), scope, id, day)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return rep, true
}

func dateQuery(c *gin.Context) (time.Time, bool) {
	d, ok := utils.OptionalDateQuery(c, "date")
	if !ok {
		return time.Time{}, false
	}
	if d == nil {
		return time.Time{}, true
	}
	return *d, true
}

func attach(c *gin.Context, name, mime string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, mime, data)
}

func filename(r *WorkerReport, ext string) string {
	name := strings.Join(strings.Fields(r.Worker.Name), "_")
	return fmt.Sprintf("%s_tasks_%s.%s", name, r.Window.Start.Format(dateLayout), ext)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrWorkerNotFound):
		response.NotFound(c, err.Error())
	default:
		response.Internal(c, err)
	}
}
