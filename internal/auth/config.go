package auth

import (
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Config combines identity provider and session management settings.
type Config struct {
	// OIDC/OAuth2 configuration
	OIDC OIDCConfig

	// Session configuration
	Session SessionConfig
}

// OIDCConfig defines the OAuth2/OIDC provider settings for Google sign-in.
type OIDCConfig struct {
	// Provider URL (https://accounts.google.com for Google)
	ProviderURL string

	// OAuth2 client credentials
	ClientID     string
	ClientSecret string //nolint:gosec // G117: intentional field for auth credentials

	// Redirect URL after authentication
	RedirectURL string

	// OAuth2 scopes
	Scopes []string

	// OIDC provider
	Provider *oidc.Provider

	// OAuth2 config
	OAuth2Config *oauth2.Config
}

// SessionConfig defines how user sessions are stored and secured.
//
// Session lifetime is fixed: MaxAge counts from session creation and is not
// extended by activity. A role change in the user store therefore takes
// effect on the next login at the latest.
type SessionConfig struct {
	// Session store type: "memory" (default) or "cookie"
	StoreType string

	// Session lifetime in seconds
	MaxAge int

	// Cookie settings
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite string

	// Secret key for session encryption
	SecretKey string
}
