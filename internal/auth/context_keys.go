package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/colegioceo/portal/internal/models"
)

// ContextKey is a typed key for context values.
type ContextKey string

// Context keys for storing user information in request context.
const (
	// CtxKeyUser is the context key for the authenticated user's session data.
	CtxKeyUser ContextKey = "portal_user"
)

// SetUserContext stores the authenticated user in the request context.
// RequireSession calls this after the session check succeeds so page
// handlers can read the caller without touching the session again.
func SetUserContext(c *gin.Context, data SessionData) {
	c.Set(string(CtxKeyUser), data)
}

// CurrentUser retrieves the authenticated user from the request context.
func CurrentUser(c *gin.Context) (SessionData, bool) {
	val, exists := c.Get(string(CtxKeyUser))
	if !exists {
		return SessionData{}, false
	}
	data, ok := val.(SessionData)
	return data, ok
}

// CurrentRole retrieves the authenticated user's role from the request context.
func CurrentRole(c *gin.Context) (models.Role, bool) {
	data, ok := CurrentUser(c)
	if !ok {
		return models.RoleUnknown, false
	}
	return data.Role, true
}
