package tenant

import (
	"errors"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContextKey is where the middleware stores the resolved Scope on the gin context.
const ContextKey = "tenant_scope"

var ErrNoTenant = errors.New("no organization in scope")

// Scope identifies the organization a call acts on. Every repository call takes one.
type Scope struct {
	OrgID    uuid.UUID
	UserID   uuid.UUID
	Currency string
	Location *time.Location
}

func New(orgID, userID uuid.UUID, currency, timezone string) Scope {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	return Scope{OrgID: orgID, UserID: userID, Currency: currency, Location: loc}
}

func (s Scope) Validate() error {
	if s.OrgID == uuid.Nil {
		return ErrNoTenant
	}
	return nil
}

// Apply filters a single-table query to the scope's organization. Use with db.Scopes.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("organization_id = ?", s.OrgID)
}

func (s Scope) Loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Today returns the organization's current calendar date as UTC midnight.
func (s Scope) Today(now time.Time) time.Time {
	return Civil(now.In(s.Loc()))
}

// Civil drops the clock part of t, keeping the calendar date t has in its own location.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FromGin(c *gin.Context) (Scope, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return Scope{}, false
	}
	s, ok := v.(Scope)
	if !ok || s.OrgID == uuid.Nil {
		return Scope{}, false
	}
	return s, true
}

// Require returns the request's Scope or answers 401 when the session carries none.
func Require(c *gin.Context) (Scope, bool) {
	s, ok := FromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "SESSION_EXPIRED", "message": "Sign in again"},
		})
		return Scope{}, false
	}
	return s, true
}
