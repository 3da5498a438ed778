package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/colegioceo/portal/internal/auth"
	"github.com/colegioceo/portal/internal/models"
	"github.com/colegioceo/portal/pkg/logger"
)

// loginErrorMessages maps the error query parameter to the message shown on
// the login page. Unknown codes render no message at all.
var loginErrorMessages = map[string]string{
	auth.ReasonAuthFailed:   "Error en la autenticación con Google.",
	auth.ReasonNotLoggedIn:  "Necesitas iniciar sesión para continuar.",
	auth.ReasonUnauthorized: "No tienes permisos para acceder a esa página.",
	auth.ReasonInvalidRole:  "Tu usuario tiene un rol no reconocido por el sistema.",
}

// PageHandlers renders the server-side pages of the portal.
type PageHandlers struct {
	auth *auth.Service
	db   *sqlx.DB
}

// NewPageHandlers creates the page handlers.
func NewPageHandlers(authService *auth.Service, db *sqlx.DB) *PageHandlers {
	return &PageHandlers{
		auth: authService,
		db:   db,
	}
}

// Index is the login page. An authenticated caller is routed straight to
// their landing area using the same mapping as the post-callback redirect.
// GET /
func (h *PageHandlers) Index(c *gin.Context) {
	session := h.auth.Session(c)
	if data, ok := auth.SessionAuth(session); ok {
		if path, ok := data.Role.LandingPath(); ok {
			c.Redirect(http.StatusFound, path)
			return
		}
		// Session carries a role outside the known set; destroy it.
		if err := h.auth.Logout(c); err != nil {
			logger.Error("Failed to destroy session: %v", err)
		}
		auth.LoginRedirect(c, auth.ReasonInvalidRole)
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Error": loginErrorMessages[c.Query("error")],
	})
}

// SecretariaMenu renders the secretaría landing page.
// GET /secretaria
func (h *PageHandlers) SecretariaMenu(c *gin.Context) {
	h.renderPage(c, "menu-secretaria.html", gin.H{})
}

// AgregarEstudiante renders the student registration form.
// GET /secretaria/agregar-estudiante
func (h *PageHandlers) AgregarEstudiante(c *gin.Context) {
	h.renderPage(c, "agregar-estudiante.html", gin.H{})
}

// EditarEstudiante renders the student edit page with the current roster.
// GET /secretaria/editar-estudiante
func (h *PageHandlers) EditarEstudiante(c *gin.Context) {
	var students []models.Student
	err := h.db.SelectContext(c.Request.Context(), &students,
		"SELECT id_estudiante, nombres, apellidos FROM estudiantes ORDER BY apellidos, nombres")
	if err != nil {
		logger.Error("Failed to list students: %v", err)
		renderInternalError(c)
		return
	}

	h.renderPage(c, "editar-estudiante.html", gin.H{"Students": students})
}

// EditarProfesor renders the teacher edit page with the current staff list.
// GET /secretaria/editar-profesor
func (h *PageHandlers) EditarProfesor(c *gin.Context) {
	var teachers []models.Teacher
	err := h.db.SelectContext(c.Request.Context(), &teachers,
		"SELECT id_profesor, nombres, apellidos FROM profesores ORDER BY apellidos, nombres")
	if err != nil {
		logger.Error("Failed to list teachers: %v", err)
		renderInternalError(c)
		return
	}

	h.renderPage(c, "editar-profesor.html", gin.H{"Teachers": teachers})
}

// AgregarProfesor renders the teacher registration form.
// GET /secretaria/agregar-profesor
func (h *PageHandlers) AgregarProfesor(c *gin.Context) {
	h.renderPage(c, "agregar-profesor.html", gin.H{
		"Error": c.Query("error"),
	})
}

// ProfesoresMenu renders the teacher landing page.
// GET /profesores
func (h *PageHandlers) ProfesoresMenu(c *gin.Context) {
	h.renderPage(c, "menu-profesores.html", gin.H{})
}

// EstudiantesMenu renders the student landing page.
// GET /estudiantes
func (h *PageHandlers) EstudiantesMenu(c *gin.Context) {
	h.renderPage(c, "menu-estudiantes.html", gin.H{})
}

// AcompanantesMenu renders the companion landing page.
// GET /acompanantes
func (h *PageHandlers) AcompanantesMenu(c *gin.Context) {
	h.renderPage(c, "menu-acompanantes.html", gin.H{})
}

// renderPage renders a guarded page with the authenticated user attached.
func (h *PageHandlers) renderPage(c *gin.Context, name string, data gin.H) {
	if user, ok := auth.CurrentUser(c); ok {
		data["User"] = user
	}
	c.HTML(http.StatusOK, name, data)
}

// renderInternalError renders the generic 500 page. Details stay in the log.
func renderInternalError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{})
	c.Abort()
}
