// Package models contains the data models for the portal.
package models

// Account represents an authorized portal user as stored in the user
// database. Accounts are owned by the school administration system; the
// portal only ever reads them.
type Account struct {
	UserID int64  `db:"user_id"`
	Email  string `db:"email"`
	Role   Role   `db:"-"`
}

// Identity is the verified profile returned by the identity provider after
// a successful login. It lives for a single login attempt.
type Identity struct {
	Email    string
	Name     string
	PhotoURL string
}

// Student represents a student record listed on the secretaría pages.
type Student struct {
	ID        int64  `db:"id_estudiante" json:"id"`
	FirstName string `db:"nombres" json:"nombres"`
	LastName  string `db:"apellidos" json:"apellidos"`
}

// Teacher represents a teacher record listed on the secretaría pages.
type Teacher struct {
	ID        int64  `db:"id_profesor" json:"id"`
	FirstName string `db:"nombres" json:"nombres"`
	LastName  string `db:"apellidos" json:"apellidos"`
}
