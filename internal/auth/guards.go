package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegioceo/portal/pkg/logger"
)

// Area identifies a protected section of the portal. Areas are the objects
// of the access gate's policy set.
type Area string

// Protected areas of the portal.
const (
	AreaSecretaria   Area = "secretaria"
	AreaProfesores   Area = "profesores"
	AreaEstudiantes  Area = "estudiantes"
	AreaAcompanantes Area = "acompanantes"
)

// Reasons surfaced to the login page via the error query parameter. They
// carry no sensitive detail; internal causes are only logged.
const (
	ReasonAuthFailed   = "auth_failed"
	ReasonNotLoggedIn  = "not_logged_in"
	ReasonUnauthorized = "unauthorized"
	ReasonInvalidRole  = "rol_invalido"
)

// LoginRedirect sends the caller back to the login page with a reason code.
func LoginRedirect(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, "/?error="+reason)
}

// RequireSession admits requests that carry a valid session and places the
// reconstituted identity in the request context. Unauthenticated requests
// are redirected to the login page before the page handler runs.
func (s *Service) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.sessions.Get(c)
		data, ok := SessionAuth(session)
		if !ok {
			LoginRedirect(c, ReasonNotLoggedIn)
			c.Abort()
			return
		}

		SetUserContext(c, data)
		c.Next()
	}
}

// RequireArea admits requests whose session role holds the access grant for
// the given area. Must run after RequireSession. A session with any other
// role is turned away with a reason code distinct from the unauthenticated
// one.
func (s *Service) RequireArea(area Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			LoginRedirect(c, ReasonNotLoggedIn)
			c.Abort()
			return
		}

		allowed, err := s.enforcer.Enforce(string(role), string(area), "access")
		if err != nil {
			logger.Error("Access gate check failed for role %s, area %s: %v", role, area, err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !allowed {
			LoginRedirect(c, ReasonUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
