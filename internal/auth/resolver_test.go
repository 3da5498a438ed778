package auth

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/colegioceo/portal/internal/apperrors"
	"github.com/colegioceo/portal/internal/models"
)

// newResolverDB creates an in-memory database with the auth tables and a
// few seeded accounts.
func newResolverDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
CREATE TABLE roles (
    id_rol INTEGER PRIMARY KEY,
    nombre_rol TEXT NOT NULL UNIQUE
);
CREATE TABLE usuarios (
    id_usuario INTEGER PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    id_rol INTEGER NOT NULL REFERENCES roles (id_rol),
    esta_activo INTEGER NOT NULL DEFAULT 1
);
INSERT INTO roles (id_rol, nombre_rol) VALUES
    (1, 'SECRETARIA'), (2, 'DIRECTOR'), (3, 'PROFESORES'),
    (4, 'ESTUDIANTES'), (5, 'ACOMPANANTES'), (6, 'PORTERO');
INSERT INTO usuarios (id_usuario, email, id_rol, esta_activo) VALUES
    (1, 'maria@colegio.edu', 1, 1),
    (2, 'director@colegio.edu', 2, 1),
    (3, 'baja@colegio.edu', 3, 0),
    (4, 'conserje@colegio.edu', 6, 1);
`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func TestResolveActiveAccount(t *testing.T) {
	resolver := NewSQLRoleResolver(newResolverDB(t))

	account, err := resolver.Resolve(context.Background(), "maria@colegio.edu")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.UserID)
	assert.Equal(t, "maria@colegio.edu", account.Email)
	assert.Equal(t, models.RoleSecretaria, account.Role)
}

func TestResolveNotFound(t *testing.T) {
	resolver := NewSQLRoleResolver(newResolverDB(t))

	tests := []struct {
		name  string
		email string
	}{
		{name: "no such email", email: "x@nope.com"},
		{name: "inactive account", email: "baja@colegio.edu"},
		{name: "empty email", email: ""},
		{name: "case-sensitive match", email: "MARIA@colegio.edu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := resolver.Resolve(context.Background(), tt.email)
			assert.Nil(t, account)
			// Missing and deactivated accounts are indistinguishable.
			assert.ErrorIs(t, err, apperrors.AccountNotFound(""))
			assert.NotErrorIs(t, err, apperrors.Database(""))
		})
	}
}

func TestResolveParsesRoleAtBoundary(t *testing.T) {
	resolver := NewSQLRoleResolver(newResolverDB(t))

	// A stored role outside the known set resolves to RoleUnknown rather
	// than leaking the raw string downstream.
	account, err := resolver.Resolve(context.Background(), "conserje@colegio.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnknown, account.Role)
	assert.False(t, account.Role.IsValid())
}

func TestResolveDatabaseErrorIsNotNotFound(t *testing.T) {
	db := newResolverDB(t)
	resolver := NewSQLRoleResolver(db)
	require.NoError(t, db.Close())

	account, err := resolver.Resolve(context.Background(), "maria@colegio.edu")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, apperrors.Database(""))
	assert.NotErrorIs(t, err, apperrors.AccountNotFound(""))
}
