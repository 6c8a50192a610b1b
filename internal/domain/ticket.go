package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNuevo     TicketStatus = "NUEVO"
	TicketStatusAsignado  TicketStatus = "ASIGNADO"
	TicketStatusEnProceso TicketStatus = "EN PROCESO"
	TicketStatusResuelto  TicketStatus = "RESUELTO"
	TicketStatusCerrado   TicketStatus = "CERRADO"
)

// TicketStatuses lists every valid ticket state.
var TicketStatuses = []TicketStatus{
	TicketStatusNuevo,
	TicketStatusAsignado,
	TicketStatusEnProceso,
	TicketStatusResuelto,
	TicketStatusCerrado,
}

// IsValid reports whether the status is a known state.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status stamps closed_at.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResuelto || s == TicketStatusCerrado
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityBaja    TicketPriority = "Baja"
	TicketPriorityMedia   TicketPriority = "Media"
	TicketPriorityAlta    TicketPriority = "Alta"
	TicketPriorityCritica TicketPriority = "Crítica"
)

// TicketPriorities lists every valid priority.
var TicketPriorities = []TicketPriority{
	TicketPriorityBaja,
	TicketPriorityMedia,
	TicketPriorityAlta,
	TicketPriorityCritica,
}

// IsValid reports whether the priority is a known level.
func (p TicketPriority) IsValid() bool {
	for _, candidate := range TicketPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for routed requests.
type Ticket struct {
	ID                int64
	Title             string
	Description       string
	Area              string
	Category          string
	Subcategory       *string
	Division          string
	Plant             string
	Priority          TicketPriority
	SuggestedUrgency  *string
	SuggestedAssignee *string
	AssignedTo        *string
	Status            TicketStatus
	Requester         string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ClosedAt          *time.Time
}

// TicketUpdate carries the three audited dimensions of an apply-update call.
// A nil pointer means the field was not requested. For AssignedTo an empty
// string clears the assignment.
type TicketUpdate struct {
	Status     *TicketStatus
	AssignedTo *string
	Priority   *TicketPriority
}

// Empty reports whether no field change was requested.
func (u TicketUpdate) Empty() bool {
	return u.Status == nil && u.AssignedTo == nil && u.Priority == nil
}
