package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/colegioceo/portal/internal/apperrors"
	"github.com/colegioceo/portal/internal/auth"
	"github.com/colegioceo/portal/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeResolver substitutes the database lookup during login.
type fakeResolver struct {
	accounts map[string]*models.Account
	err      error
}

func (f *fakeResolver) Resolve(_ context.Context, email string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	if account, ok := f.accounts[email]; ok {
		return account, nil
	}
	return nil, apperrors.AccountNotFound("no active account for email")
}

// newDirectoryDB creates an in-memory database backing the secretaría pages.
func newDirectoryDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
CREATE TABLE estudiantes (
    id_estudiante INTEGER PRIMARY KEY,
    nombres TEXT NOT NULL,
    apellidos TEXT NOT NULL
);
CREATE TABLE profesores (
    id_profesor INTEGER PRIMARY KEY,
    nombres TEXT NOT NULL,
    apellidos TEXT NOT NULL
);
INSERT INTO estudiantes (nombres, apellidos) VALUES ('Lucía', 'Gómez'), ('Pedro', 'Alvarez');
INSERT INTO profesores (nombres, apellidos) VALUES ('Juan', 'Ejemplo');
`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func testAccounts() map[string]*models.Account {
	return map[string]*models.Account{
		"maria@colegio.edu":    {UserID: 1, Email: "maria@colegio.edu", Role: models.RoleSecretaria},
		"director@colegio.edu": {UserID: 2, Email: "director@colegio.edu", Role: models.RoleDirector},
		"profe@colegio.edu":    {UserID: 3, Email: "profe@colegio.edu", Role: models.RoleProfesores},
		"alumno@colegio.edu":   {UserID: 4, Email: "alumno@colegio.edu", Role: models.RoleEstudiantes},
		"acomp@colegio.edu":    {UserID: 5, Email: "acomp@colegio.edu", Role: models.RoleAcompanantes},
		"portero@colegio.edu":  {UserID: 6, Email: "portero@colegio.edu", Role: models.ParseRole("PORTERO")},
	}
}

// newTestRouter builds the real route table with the resolver swapped out
// and a test-only route that enters the login pipeline after the OAuth
// exchange, as the callback handler does with a verified identity.
func newTestRouter(t *testing.T, resolver auth.RoleResolver, db *sqlx.DB) *gin.Engine {
	t.Helper()

	svc, err := auth.NewService(&auth.Config{
		Session: auth.SessionConfig{
			StoreType:      "memory",
			MaxAge:         sessionMaxAge,
			CookieName:     "portal_session",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: "lax",
			SecretKey:      "test-session-secret",
		},
	})
	require.NoError(t, err)

	authHandlers := NewAuthHandlers(svc, resolver)
	pages := NewPageHandlers(svc, db)

	r := gin.New()
	r.SetHTMLTemplate(loadTemplates())
	r.Use(svc.SessionMiddleware())
	registerRoutes(r, svc, authHandlers, pages)

	r.GET("/test/complete-login", func(c *gin.Context) {
		authHandlers.completeLogin(c, &models.Identity{
			Email:    c.Query("email"),
			Name:     "Usuario Prueba",
			PhotoURL: "https://example.com/p.png",
		})
	})

	return r
}

func perform(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// loginWith completes a login for email and returns the redirect and cookies.
func loginWith(t *testing.T, r *gin.Engine, email string) (string, []*http.Cookie) {
	t.Helper()

	w := perform(r, "/test/complete-login?email="+email, nil)
	require.Equal(t, http.StatusFound, w.Code)
	return w.Result().Header.Get("Location"), w.Result().Cookies()
}

func TestLandingEquivalence(t *testing.T) {
	tests := []struct {
		email   string
		landing string
	}{
		{email: "maria@colegio.edu", landing: "/secretaria"},
		{email: "director@colegio.edu", landing: "/secretaria"},
		{email: "profe@colegio.edu", landing: "/profesores"},
		{email: "alumno@colegio.edu", landing: "/estudiantes"},
		{email: "acomp@colegio.edu", landing: "/acompanantes"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

			// Post-callback redirect and the root page redirect must agree.
			postLogin, cookies := loginWith(t, r, tt.email)
			assert.Equal(t, tt.landing, postLogin)

			w := perform(r, "/", cookies)
			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, postLogin, w.Result().Header.Get("Location"))
		})
	}
}

func TestSecretaryScenario(t *testing.T) {
	r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

	landing, cookies := loginWith(t, r, "maria@colegio.edu")
	require.Equal(t, "/secretaria", landing)

	w := perform(r, "/", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/secretaria", w.Result().Header.Get("Location"))

	// Her own area renders with her identity on the page.
	w = perform(r, "/secretaria", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Menú de Secretaría")
	assert.Contains(t, w.Body.String(), "maria@colegio.edu")

	// Page content comes from the database once the guards admit her.
	w = perform(r, "/secretaria/editar-estudiante", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gómez")

	w = perform(r, "/secretaria/editar-profesor", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ejemplo")

	// The teacher area turns her away with the wrong-role reason.
	w = perform(r, "/profesores", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=unauthorized", w.Result().Header.Get("Location"))
}

func TestUnknownEmailScenario(t *testing.T) {
	r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

	// The callback completes without establishing a session; the failure
	// is indistinguishable from a provider failure.
	w := perform(r, "/test/complete-login?email=x@nope.com", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=auth_failed", w.Result().Header.Get("Location"))

	// Any guarded route still sees an anonymous caller.
	w = perform(r, "/estudiantes", w.Result().Cookies())
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=not_logged_in", w.Result().Header.Get("Location"))
}

func TestLogoutScenario(t *testing.T) {
	r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

	_, cookies := loginWith(t, r, "profe@colegio.edu")

	w := perform(r, "/profesores", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, "/logout", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Result().Header.Get("Location"))

	setCookie := strings.Join(w.Result().Header["Set-Cookie"], "\n")
	assert.Contains(t, setCookie, "portal_session=")
	assert.Contains(t, setCookie, "Max-Age=0")

	// The stale token no longer admits the caller.
	w = perform(r, "/profesores", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=not_logged_in", w.Result().Header.Get("Location"))
}

func TestUnrecognizedRoleLogin(t *testing.T) {
	r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

	// The account exists and is active, but its role is outside the known
	// set: login is declined with rol_invalido and no session survives.
	w := perform(r, "/test/complete-login?email=portero@colegio.edu", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=rol_invalido", w.Result().Header.Get("Location"))

	w = perform(r, "/", w.Result().Cookies())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Iniciar sesión con Google")
}

func TestDatabaseErrorSurfacesAsServerFault(t *testing.T) {
	resolver := &fakeResolver{err: apperrors.Database("account lookup failed").Wrap(errors.New("dial tcp: connection refused"))}
	r := newTestRouter(t, resolver, newDirectoryDB(t))

	// A lookup failure is never masked as a failed login.
	w := perform(r, "/test/complete-login?email=maria@colegio.edu", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error interno del servidor")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestLoginPageErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{name: "auth failed", query: "?error=auth_failed", message: "Error en la autenticación con Google."},
		{name: "not logged in", query: "?error=not_logged_in", message: "Necesitas iniciar sesión para continuar."},
		{name: "unauthorized", query: "?error=unauthorized", message: "No tienes permisos para acceder a esa página."},
		{name: "invalid role", query: "?error=rol_invalido", message: "Tu usuario tiene un rol no reconocido por el sistema."},
	}

	r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, "/"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}

	t.Run("unknown code renders no message", func(t *testing.T) {
		w := perform(r, "/?error=what", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `class="error"`)
	})
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &fakeResolver{accounts: testAccounts()}, newDirectoryDB(t))

	w := perform(r, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
