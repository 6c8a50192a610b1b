package auth

import "github.com/gestar-hq/gestar-service/internal/domain"

// Authorization predicates. Pure functions of role and area, no I/O. The
// lifecycle engine consults these before applying guarded field changes, and
// handlers use them to decide which controls a caller may reach.

// CanSelfAssign reports whether the user may take a new ticket for
// themselves: a Director anywhere, or an Analista/Jefe of the destination
// area, while the ticket is still NUEVO.
func CanSelfAssign(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if ticket.Status != domain.TicketStatusNuevo {
		return false
	}
	if user.Role == domain.RoleDirector {
		return true
	}
	return (user.Role == domain.RoleAnalista || user.Role == domain.RoleJefe) && user.Area == ticket.Area
}

// CanReassign reports whether the user may assign the ticket to someone
// else: a Director anywhere, or a Jefe of the destination area.
func CanReassign(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	if user.Role == domain.RoleDirector {
		return true
	}
	return user.Role == domain.RoleJefe && user.Area == ticket.Area
}

// CanEditPriority reports whether the user may set the authoritative
// priority. Requesters only suggest urgency; everyone else decides.
func CanEditPriority(user *domain.User) bool {
	if user == nil {
		return false
	}
	return user.Role != domain.RoleSolicitante
}

// IsAdministrator reports whether the user holds the Administrador role.
func IsAdministrator(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleAdministrador
}
