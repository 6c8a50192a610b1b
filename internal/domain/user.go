package domain

import "time"

// UserRole enumerates organizational roles.
type UserRole string

const (
	RoleSolicitante   UserRole = "Solicitante"
	RoleAnalista      UserRole = "Analista"
	RoleJefe          UserRole = "Jefe"
	RoleDirector      UserRole = "Director"
	RoleAdministrador UserRole = "Administrador"
)

// UserRoles lists every valid role.
var UserRoles = []UserRole{
	RoleSolicitante,
	RoleAnalista,
	RoleJefe,
	RoleDirector,
	RoleAdministrador,
}

// IsValid reports whether the role is known.
func (r UserRole) IsValid() bool {
	for _, candidate := range UserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// User is an actor. Role and home area jointly determine authorization.
// Deactivated users remain visible in audit history but are excluded from
// active-user pickers.
type User struct {
	ID           int64
	Name         string
	Email        string
	Role         UserRole
	Area         string
	Active       bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries the mutable fields of a user record. Updates are
// restricted to this allow-list.
type UserUpdate struct {
	Role   *UserRole
	Area   *string
	Email  *string
	Active *bool
}

// Empty reports whether no field change was requested.
func (u UserUpdate) Empty() bool {
	return u.Role == nil && u.Area == nil && u.Email == nil && u.Active == nil
}
