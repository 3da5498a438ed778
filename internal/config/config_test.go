package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredSecrets supplies the credentials Load refuses to run without.
func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("PORTAL_GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("PORTAL_GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("PORTAL_SESSION_SECRET", "session-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, "https://accounts.google.com", cfg.Auth.ProviderURL)
	assert.Equal(t, "portal_session", cfg.Auth.CookieName)
	assert.Equal(t, "lax", cfg.Auth.CookieSameSite)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("PORTAL_GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("PORTAL_GOOGLE_CLIENT_SECRET", "")
	t.Setenv("PORTAL_SESSION_SECRET", "session-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORTAL_GOOGLE_CLIENT_SECRET")
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("PORTAL_GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("PORTAL_GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("PORTAL_SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session secret")
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	setRequiredSecrets(t)

	path := filepath.Join(t.TempDir(), "portal.yaml")
	file := `
server:
  address: ":8080"
database:
  host: db.internal
  run_migrations: false
auth:
  cookie_name: from_file
environment: production
`
	require.NoError(t, os.WriteFile(path, []byte(file), 0o600))
	t.Setenv("PORTAL_CONFIG", path)

	// Environment variables win over the file.
	t.Setenv("PORTAL_COOKIE_NAME", "from_env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Database.RunMigrations)
	assert.Equal(t, "from_env", cfg.Auth.CookieName)
	assert.Equal(t, EnvProduction, cfg.Environment)
	// Untouched values keep their defaults.
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("PORTAL_ENV", "staging-ish")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}
