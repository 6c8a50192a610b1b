package domain

import "time"

// TaskStatus enumerates task states.
type TaskStatus string

const (
	TaskStatusPendiente  TaskStatus = "PENDIENTE"
	TaskStatusEnProceso  TaskStatus = "EN PROCESO"
	TaskStatusCompletada TaskStatus = "COMPLETADA"
	TaskStatusCancelada  TaskStatus = "CANCELADA"
)

// TaskStatuses lists every valid task state.
var TaskStatuses = []TaskStatus{
	TaskStatusPendiente,
	TaskStatusEnProceso,
	TaskStatusCompletada,
	TaskStatusCancelada,
}

// IsValid reports whether the status is a known state.
func (s TaskStatus) IsValid() bool {
	for _, candidate := range TaskStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Task is a unit of work under a ticket. Tasks do not emit audit entries.
type Task struct {
	ID          int64
	TicketID    int64
	Description string
	Responsible string
	Status      TaskStatus
	CreatedAt   time.Time
}

// TaskWithTicket pairs a task with the title of its parent ticket, for the
// pending-tasks-by-user view.
type TaskWithTicket struct {
	Task
	TicketTitle string
}
