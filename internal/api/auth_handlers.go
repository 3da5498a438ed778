package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegioceo/portal/internal/apperrors"
	"github.com/colegioceo/portal/internal/auth"
	"github.com/colegioceo/portal/internal/models"
	"github.com/colegioceo/portal/pkg/logger"
)

// AuthHandlers provides the HTTP handlers for the login gateway: starting
// the Google OAuth flow, completing it on the provider callback, and logout.
type AuthHandlers struct {
	auth     *auth.Service
	resolver auth.RoleResolver
}

// NewAuthHandlers creates the authentication handlers. The resolver is
// injected so tests can substitute the database lookup.
func NewAuthHandlers(authService *auth.Service, resolver auth.RoleResolver) *AuthHandlers {
	return &AuthHandlers{
		auth:     authService,
		resolver: resolver,
	}
}

// StartGoogleLogin redirects to the Google consent screen.
// GET /auth/google
func (h *AuthHandlers) StartGoogleLogin(c *gin.Context) {
	if err := h.auth.StartLogin(c); err != nil {
		logger.Error("Failed to start login: %v", err)
		auth.LoginRedirect(c, auth.ReasonAuthFailed)
	}
}

// GoogleCallback completes the OAuth exchange and, given a verified
// identity, runs the login pipeline: resolve role, snapshot it into a
// session, route to the role's landing area.
// GET /auth/google/callback
func (h *AuthHandlers) GoogleCallback(c *gin.Context) {
	identity, err := h.auth.FinishLogin(c)
	if err != nil {
		logAuthFailure(err)
		auth.LoginRedirect(c, auth.ReasonAuthFailed)
		return
	}

	h.completeLogin(c, identity)
}

// completeLogin runs the post-identity half of the login: role resolution,
// session creation and the landing redirect, strictly in that order.
//
// An email with no active account ends the login with the same auth_failed
// redirect as a provider failure, so the response never leaks whether the
// account exists. A lookup error is a server fault and surfaces as 500.
func (h *AuthHandlers) completeLogin(c *gin.Context, identity *models.Identity) {
	account, err := h.resolver.Resolve(c.Request.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, apperrors.AccountNotFound("")) {
			logAuthFailure(err)
			auth.LoginRedirect(c, auth.ReasonAuthFailed)
			return
		}
		logger.Error("Account lookup failed during login: %v", err)
		renderInternalError(c)
		return
	}

	path, ok := account.Role.LandingPath()
	if !ok {
		logger.Warn("Declining login for user %d: unrecognized role", account.UserID)
		if err := h.auth.Logout(c); err != nil {
			logger.Error("Failed to destroy session: %v", err)
		}
		auth.LoginRedirect(c, auth.ReasonInvalidRole)
		return
	}

	if err := h.auth.CreateSession(c, identity, account); err != nil {
		logger.Error("Failed to create session: %v", err)
		renderInternalError(c)
		return
	}

	c.Redirect(http.StatusFound, path)
}

// Logout destroys the session, clears the session cookie and returns to the
// login page. Safe to call without a session.
// GET /logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.auth.Logout(c); err != nil {
		logger.Error("Failed to logout: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// logAuthFailure logs a declined login server-side, including internal
// details that never reach the response.
func logAuthFailure(err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Internal != "" {
		logger.Warn("Login failed: %s (%s)", appErr.Message, appErr.Internal)
		return
	}
	logger.Warn("Login failed: %v", err)
}
