package auth

import "github.com/colegioceo/portal/internal/models"

// SessionKey is a typed key for session values to prevent typos and enable refactoring.
type SessionKey string

// Session keys for storing authentication data in sessions.
const (
	// SessKeyUserID stores the authenticated user's ID
	SessKeyUserID SessionKey = "user_id"
	// SessKeyEmail stores the authenticated user's email
	SessKeyEmail SessionKey = "email"
	// SessKeyRole stores the role snapshot taken at login
	SessKeyRole SessionKey = "role"
	// SessKeyName stores the display name from the identity provider
	SessKeyName SessionKey = "name"
	// SessKeyPhotoURL stores the profile photo URL from the identity provider
	SessKeyPhotoURL SessionKey = "photo_url"
	// SessKeyOAuthState stores the OAuth CSRF state token
	SessKeyOAuthState SessionKey = "oauth_state"
	// SessKeyOAuthNonce stores the OIDC nonce for ID token replay protection
	SessKeyOAuthNonce SessionKey = "oauth_nonce"
)

// SessionData contains all authentication-related session data. The role is
// a snapshot taken from the account at login; it is not re-validated on
// subsequent requests.
type SessionData struct {
	UserID   int64
	Email    string
	Role     models.Role
	Name     string
	PhotoURL string
}

// SetSessionAuth stores authentication data in the session type-safely.
func SetSessionAuth(session Session, data SessionData) {
	session.Set(string(SessKeyUserID), data.UserID)
	session.Set(string(SessKeyEmail), data.Email)
	session.Set(string(SessKeyRole), string(data.Role))
	session.Set(string(SessKeyName), data.Name)
	session.Set(string(SessKeyPhotoURL), data.PhotoURL)
}

// SessionAuth reconstitutes the authenticated identity from the session.
// ok is false when no authenticated session exists. The stored role string
// is parsed back onto the closed role set; an out-of-set value surfaces as
// models.RoleUnknown and is rejected by the guards.
func SessionAuth(session Session) (SessionData, bool) {
	userID, ok := sessionInt64(session, SessKeyUserID)
	if !ok {
		return SessionData{}, false
	}
	email, ok := SessionString(session, SessKeyEmail)
	if !ok {
		return SessionData{}, false
	}
	role, ok := SessionString(session, SessKeyRole)
	if !ok {
		return SessionData{}, false
	}
	name, _ := SessionString(session, SessKeyName)
	photo, _ := SessionString(session, SessKeyPhotoURL)

	return SessionData{
		UserID:   userID,
		Email:    email,
		Role:     models.ParseRole(role),
		Name:     name,
		PhotoURL: photo,
	}, true
}

// SessionString retrieves a string value from session by key.
func SessionString(session Session, key SessionKey) (string, bool) {
	val := session.Get(string(key))
	if val == nil {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return "", false
}

// sessionInt64 retrieves an int64 value from session, handling int variants.
func sessionInt64(session Session, key SessionKey) (int64, bool) {
	val := session.Get(string(key))
	if val == nil {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// SessionOAuthState retrieves the OAuth state token from session.
func SessionOAuthState(session Session) (string, bool) {
	return SessionString(session, SessKeyOAuthState)
}

// SessionOAuthNonce retrieves the OIDC nonce from session.
func SessionOAuthNonce(session Session) (string, bool) {
	return SessionString(session, SessKeyOAuthNonce)
}

// SetSessionOAuth stores the OAuth state and nonce in session.
func SetSessionOAuth(session Session, state, nonce string) {
	session.Set(string(SessKeyOAuthState), state)
	session.Set(string(SessKeyOAuthNonce), nonce)
}

// ClearSessionOAuth clears OAuth-specific session data after the callback.
func ClearSessionOAuth(session Session) {
	session.Delete(string(SessKeyOAuthState))
	session.Delete(string(SessKeyOAuthNonce))
}
