package account

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bizops/internal/pkg/money"
	"bizops/internal/pkg/response"
	"bizops/internal/tenant"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
	v1.GET("/currencies", h.Currencies)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/me", h.Me)
	protected.GET("/organization", h.GetOrganization)
	protected.PUT("/organization", h.UpdateOrganization)
	protected.DELETE("/account", h.DeleteAccount)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	session, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, session)
}

func (h *Handler) Currencies(c *gin.Context) {
	response.OK(c, gin.H{"currencies": money.Currencies(), "default": money.DefaultCurrency})
}

func (h *Handler) Me(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	user, org, err := h.service.Me(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"user": user, "organization": org})
}

func (h *Handler) GetOrganization(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	org, err := h.service.GetOrganization(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"organization": org})
}

func (h *Handler) UpdateOrganization(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	var req OrganizationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	org, err := h.service.UpdateOrganization(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"organization": org})
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	scope, ok := tenant.Require(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), scope); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidCurrency), errors.Is(err, ErrInvalidTimezone):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrOrgNotFound), errors.Is(err, tenant.ErrNoTenant):
		response.Error(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Sign in again")
	default:
		response.Internal(c, err)
	}
}
