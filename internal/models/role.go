package models

// Role is the closed set of user roles known to the portal. Role values come
// from the roles table as free-form strings; ParseRole validates them at the
// resolver boundary so nothing downstream handles a raw string.
type Role string

// Known roles. RoleUnknown is the meta-state for any other stored value.
const (
	RoleSecretaria   Role = "SECRETARIA"
	RoleDirector     Role = "DIRECTOR"
	RoleProfesores   Role = "PROFESORES"
	RoleEstudiantes  Role = "ESTUDIANTES"
	RoleAcompanantes Role = "ACOMPANANTES"
	RoleUnknown      Role = ""
)

// ParseRole maps a stored role name onto the closed role set.
// Anything outside the set becomes RoleUnknown.
func ParseRole(name string) Role {
	switch Role(name) {
	case RoleSecretaria, RoleDirector, RoleProfesores, RoleEstudiantes, RoleAcompanantes:
		return Role(name)
	}
	return RoleUnknown
}

// IsValid reports whether the role belongs to the known set.
func (r Role) IsValid() bool {
	return ParseRole(string(r)) != RoleUnknown
}

// LandingPath returns the landing area for the role. The mapping is the same
// for the post-login redirect and for direct visits to the root page.
// ok is false for RoleUnknown, in which case the caller must destroy the
// session and send the user back to the login page.
func (r Role) LandingPath() (string, bool) {
	switch r {
	case RoleSecretaria, RoleDirector:
		return "/secretaria", true
	case RoleProfesores:
		return "/profesores", true
	case RoleEstudiantes:
		return "/estudiantes", true
	case RoleAcompanantes:
		return "/acompanantes", true
	}
	return "", false
}
