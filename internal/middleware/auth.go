package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bizops/internal/pkg/jwt"
	"bizops/internal/pkg/response"
	"bizops/internal/tenant"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
)

// ScopeResolver loads the organization a signed-in user acts for.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, userID uuid.UUID) (tenant.Scope, error)
}

func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// TenantScope runs after JWTAuth and stores the caller's tenant.Scope on the context.
// A user or organization that no longer exists ends the session.
func TenantScope(resolver ScopeResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Sign in again")
			return
		}

		scope, err := resolver.ResolveScope(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, tenant.ErrNoTenant) {
				log.Warn("session without organization", zap.String("user_id", userID.String()), zap.Error(err))
				response.Abort(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Sign in again")
				return
			}
			response.Internal(c, err)
			c.Abort()
			return
		}

		c.Set(tenant.ContextKey, scope)
		c.Next()
	}
}

func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
