package dto

import (
	"time"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Area              string                `json:"area"`
	Category          string                `json:"category"`
	Subcategory       *string               `json:"subcategory"`
	Division          string                `json:"division"`
	Plant             string                `json:"plant"`
	Priority          domain.TicketPriority `json:"priority"`
	SuggestedUrgency  *string               `json:"suggested_urgency"`
	SuggestedAssignee *string               `json:"suggested_assignee"`
	Requester         string                `json:"requester"`
}

// UpdateTicketRequest carries the optional dimensions of a ticket update.
// Absent fields leave the dimension untouched; assigned_to set to the empty
// string clears the assignment.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus   `json:"status"`
	AssignedTo *string                `json:"assigned_to"`
	Priority   *domain.TicketPriority `json:"priority"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         int64                 `json:"id"`
	Title      string                `json:"title"`
	Area       string                `json:"area"`
	Priority   domain.TicketPriority `json:"priority"`
	Status     domain.TicketStatus   `json:"status"`
	AssignedTo *string               `json:"assigned_to"`
	Requester  string                `json:"requester"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	ClosedAt   *time.Time            `json:"closed_at"`
}

// TicketDetailResponse provides full ticket info with its tasks and log.
type TicketDetailResponse struct {
	ID                int64                 `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Area              string                `json:"area"`
	Category          string                `json:"category"`
	Subcategory       *string               `json:"subcategory"`
	Division          string                `json:"division"`
	Plant             string                `json:"plant"`
	Priority          domain.TicketPriority `json:"priority"`
	SuggestedUrgency  *string               `json:"suggested_urgency"`
	SuggestedAssignee *string               `json:"suggested_assignee"`
	AssignedTo        *string               `json:"assigned_to"`
	Status            domain.TicketStatus   `json:"status"`
	Requester         string                `json:"requester"`
	CreatedBy         string                `json:"created_by"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	ClosedAt          *time.Time            `json:"closed_at"`
	Tasks             []TaskResponse        `json:"tasks"`
	Log               []AuditEntryResponse  `json:"log"`
}

// AuditEntryResponse represents one ticket log entry.
type AuditEntryResponse struct {
	ID        int64                 `json:"id"`
	TicketID  int64                 `json:"ticket_id"`
	Author    string                `json:"author"`
	EventType domain.AuditEventType `json:"event_type"`
	Message   string                `json:"message"`
	Payload   map[string]any        `json:"payload,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	Description string  `json:"description"`
	Responsible *string `json:"responsible"`
}

// UpdateTaskStatusRequest payload.
type UpdateTaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// TaskResponse represents a ticket task.
type TaskResponse struct {
	ID          int64             `json:"id"`
	TicketID    int64             `json:"ticket_id"`
	Description string            `json:"description"`
	Responsible string            `json:"responsible"`
	Status      domain.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// PendingTaskResponse pairs a task with the title of its ticket.
type PendingTaskResponse struct {
	TaskResponse
	TicketTitle string `json:"ticket_title"`
}
