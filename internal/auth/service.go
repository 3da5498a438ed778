package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/colegioceo/portal/internal/apperrors"
	"github.com/colegioceo/portal/internal/models"
)

// Service handles authentication and authorization: the OAuth exchange with
// the identity provider, the session lifecycle, and the per-area access gate.
type Service struct {
	config   *Config
	enforcer *casbin.Enforcer
	sessions SessionStore
	ginStore sessions.Store
}

// NewService creates a new authentication service. OIDC discovery runs only
// when a provider URL is configured, so tests can build a Service without
// network access.
func NewService(cfg *Config) (*Service, error) {
	s := &Service{
		config: cfg,
	}

	if cfg.OIDC.ProviderURL != "" {
		if err := s.initializeOIDC(); err != nil {
			return nil, fmt.Errorf("failed to initialize OIDC: %w", err)
		}
	}

	store, ginStore, err := NewGinSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	s.sessions = store
	s.ginStore = ginStore

	enforcer, err := initializeGate()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize access gate: %w", err)
	}
	s.enforcer = enforcer

	return s, nil
}

// initializeOIDC configures the OIDC provider for Google sign-in.
func (s *Service) initializeOIDC() error {
	ctx := context.Background()

	provider, err := oidc.NewProvider(ctx, s.config.OIDC.ProviderURL)
	if err != nil {
		return err
	}

	s.config.OIDC.Provider = provider
	s.config.OIDC.OAuth2Config = &oauth2.Config{
		ClientID:     s.config.OIDC.ClientID,
		ClientSecret: s.config.OIDC.ClientSecret,
		RedirectURL:  s.config.OIDC.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       s.config.OIDC.Scopes,
	}

	return nil
}

// initializeGate sets up the role-to-area access gate using Casbin.
// The policy set is closed and built at startup; roles and areas are a fixed
// enumeration, not a user-editable rule system.
func initializeGate() (*casbin.Enforcer, error) {
	// Define RBAC model inline
	modelText := `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && keyMatch(r.act, p.act)
`

	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	// Each role may access exactly one area. SECRETARIA and DIRECTOR are
	// equivalent for authorization: both hold the secretaría grant.
	policies := [][]string{
		{string(models.RoleSecretaria), string(AreaSecretaria), "access"},
		{string(models.RoleDirector), string(AreaSecretaria), "access"},
		{string(models.RoleProfesores), string(AreaProfesores), "access"},
		{string(models.RoleEstudiantes), string(AreaEstudiantes), "access"},
		{string(models.RoleAcompanantes), string(AreaAcompanantes), "access"},
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p); err != nil {
			return nil, fmt.Errorf("failed to add access policy %v: %w", p, err)
		}
	}

	return enforcer, nil
}

// SessionMiddleware returns the Gin middleware for session management.
func (s *Service) SessionMiddleware() gin.HandlerFunc {
	return sessions.Sessions(s.config.Session.CookieName, s.ginStore)
}

// Session retrieves the current session for the request context.
func (s *Service) Session(c *gin.Context) Session {
	return s.sessions.Get(c)
}

// StartLogin begins the OAuth flow: it stores a fresh state and nonce in the
// session and redirects to the provider's consent screen with the account
// chooser forced.
func (s *Service) StartLogin(c *gin.Context) error {
	if s.config.OIDC.OAuth2Config == nil {
		return fmt.Errorf("oauth is not configured")
	}

	state := uuid.New().String()
	nonce := uuid.New().String()

	session := s.sessions.Get(c)
	SetSessionOAuth(session, state, nonce)
	if err := session.Save(c); err != nil {
		return fmt.Errorf("failed to save oauth session: %w", err)
	}

	url := s.config.OIDC.OAuth2Config.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"))
	c.Redirect(http.StatusFound, url)
	return nil
}

// FinishLogin completes the OAuth flow on the provider callback and returns
// the verified identity. Every failure mode maps to a provider failure; the
// caller treats it as a terminal failed login.
func (s *Service) FinishLogin(c *gin.Context) (*models.Identity, error) {
	session := s.sessions.Get(c)

	if errParam := c.Query("error"); errParam != "" {
		return nil, apperrors.ProviderFailure("provider denied the login").
			WithInternal("provider error: %s", errParam)
	}

	state := c.Query("state")
	savedState, ok := SessionOAuthState(session)
	if !ok || state == "" || state != savedState {
		return nil, apperrors.ProviderFailure("invalid state")
	}

	code := c.Query("code")
	if code == "" {
		return nil, apperrors.ProviderFailure("missing authorization code")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	token, err := s.config.OIDC.OAuth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.ProviderFailure("code exchange failed").Wrap(err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, apperrors.ProviderFailure("no id_token in response")
	}

	verifier := s.config.OIDC.Provider.Verifier(&oidc.Config{
		ClientID: s.config.OIDC.ClientID,
	})

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apperrors.ProviderFailure("ID token verification failed").Wrap(err)
	}

	savedNonce, ok := SessionOAuthNonce(session)
	if !ok || idToken.Nonce != savedNonce {
		return nil, apperrors.ProviderFailure("invalid nonce")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.ProviderFailure("failed to parse claims").Wrap(err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, apperrors.ProviderFailure("provider did not vouch for an email")
	}

	ClearSessionOAuth(session)
	if err := session.Save(c); err != nil {
		return nil, apperrors.ProviderFailure("failed to save session").Wrap(err)
	}

	return &models.Identity{
		Email:    claims.Email,
		Name:     claims.Name,
		PhotoURL: claims.Picture,
	}, nil
}

// CreateSession persists the authenticated identity for subsequent requests.
// The account's role is snapshotted into the session; accounts with an
// unrecognized role are rejected here and never get a session.
func (s *Service) CreateSession(c *gin.Context, identity *models.Identity, account *models.Account) error {
	if !account.Role.IsValid() {
		return apperrors.UnrecognizedRole("account role is not recognized").
			WithInternal("user %d carries unrecognized role", account.UserID)
	}

	session := s.sessions.Get(c)
	SetSessionAuth(session, SessionData{
		UserID:   account.UserID,
		Email:    account.Email,
		Role:     account.Role,
		Name:     identity.Name,
		PhotoURL: identity.PhotoURL,
	})
	return session.Save(c)
}

// Logout destroys the session and expires the session cookie.
func (s *Service) Logout(c *gin.Context) error {
	session := s.sessions.Get(c)
	session.Clear()
	session.Expire()
	if err := session.Save(c); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
