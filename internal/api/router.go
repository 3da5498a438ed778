package api

import (
	"log"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/colegioceo/portal/internal/auth"
	"github.com/colegioceo/portal/internal/config"
)

// sessionMaxAge is the fixed session lifetime in seconds (24 hours from
// creation, not extended by activity).
const sessionMaxAge = 86400

// SetupRouter configures and returns the portal router with all routes and
// middleware.
func SetupRouter(db *sqlx.DB, cfg *config.Config) *gin.Engine {
	authConfig := &auth.Config{
		OIDC: auth.OIDCConfig{
			ProviderURL:  cfg.Auth.ProviderURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  cfg.Auth.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		Session: auth.SessionConfig{
			StoreType:      "memory",
			MaxAge:         sessionMaxAge,
			CookieName:     cfg.Auth.CookieName,
			CookiePath:     "/",
			CookieDomain:   cfg.Auth.CookieDomain,
			CookieSecure:   cfg.Environment.IsProduction(),
			CookieHTTPOnly: true,
			CookieSameSite: cfg.Auth.CookieSameSite,
			SecretKey:      cfg.Auth.SessionSecret,
		},
	}

	authService, err := auth.NewService(authConfig)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	resolver := auth.NewSQLRoleResolver(db)
	authHandlers := NewAuthHandlers(authService, resolver)
	pages := NewPageHandlers(authService, db)

	r := gin.Default()
	r.SetHTMLTemplate(loadTemplates())

	// Session middleware - must be first
	r.Use(authService.SessionMiddleware())

	registerRoutes(r, authService, authHandlers, pages)

	return r
}

// registerRoutes declares every route together with its required guards, so
// the capability set of each page is visible in one place.
func registerRoutes(r *gin.Engine, authService *auth.Service, authHandlers *AuthHandlers, pages *PageHandlers) {
	r.GET("/", pages.Index)

	// Login gateway
	r.GET("/auth/google", authHandlers.StartGoogleLogin)
	r.GET("/auth/google/callback", authHandlers.GoogleCallback)
	r.GET("/logout", authHandlers.Logout)

	// Secretaría area (secretary and director)
	secretaria := r.Group("/secretaria",
		authService.RequireSession(), authService.RequireArea(auth.AreaSecretaria))
	{
		secretaria.GET("", pages.SecretariaMenu)
		secretaria.GET("/agregar-estudiante", pages.AgregarEstudiante)
		secretaria.GET("/editar-estudiante", pages.EditarEstudiante)
		secretaria.GET("/editar-profesor", pages.EditarProfesor)
		secretaria.GET("/agregar-profesor", pages.AgregarProfesor)
	}

	// Single-page areas
	r.GET("/profesores",
		authService.RequireSession(), authService.RequireArea(auth.AreaProfesores), pages.ProfesoresMenu)
	r.GET("/estudiantes",
		authService.RequireSession(), authService.RequireArea(auth.AreaEstudiantes), pages.EstudiantesMenu)
	r.GET("/acompanantes",
		authService.RequireSession(), authService.RequireArea(auth.AreaAcompanantes), pages.AcompanantesMenu)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "portal",
		})
	})
}
