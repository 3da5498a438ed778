package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/colegioceo/portal/internal/apperrors"
	"github.com/colegioceo/portal/internal/models"
)

// RoleResolver looks up the account and role for a verified email address.
// It runs once per login; subsequent requests work from the session snapshot.
type RoleResolver interface {
	// Resolve returns the active account matching email. A missing account
	// and a deactivated account are indistinguishable: both return an error
	// matching apperrors.CodeAccountNotFound. Lookup failures return an
	// error matching apperrors.CodeDatabase instead, never not-found.
	Resolve(ctx context.Context, email string) (*models.Account, error)
}

// SQLRoleResolver resolves roles against the usuarios/roles tables.
type SQLRoleResolver struct {
	db *sqlx.DB
}

// NewSQLRoleResolver creates a resolver backed by the given database.
func NewSQLRoleResolver(db *sqlx.DB) *SQLRoleResolver {
	return &SQLRoleResolver{db: db}
}

// accountRow is the raw lookup result before the role name is parsed.
type accountRow struct {
	UserID   int64  `db:"user_id"`
	Email    string `db:"email"`
	RoleName string `db:"role_name"`
}

const resolveQuery = `
SELECT u.id_usuario AS user_id, u.email AS email, r.nombre_rol AS role_name
FROM usuarios u
JOIN roles r ON r.id_rol = u.id_rol
WHERE u.email = ? AND u.esta_activo = 1`

// Resolve executes the single parameterized account lookup. The email is
// always a bound parameter.
func (r *SQLRoleResolver) Resolve(ctx context.Context, email string) (*models.Account, error) {
	var row accountRow
	if err := r.db.GetContext(ctx, &row, resolveQuery, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.AccountNotFound("no active account for email").
				WithInternal("email %q has no active account", email)
		}
		return nil, apperrors.Database("account lookup failed").Wrap(err)
	}

	return &models.Account{
		UserID: row.UserID,
		Email:  row.Email,
		Role:   models.ParseRole(row.RoleName),
	}, nil
}
