package events

import (
	"time"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventCommentPosted         EventType = "comment_posted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Area     string                `json:"area_destino"`
	Priority domain.TicketPriority `json:"prioridad"`
	Title    string                `json:"titulo"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"from"`
	NewStatus domain.TicketStatus `json:"to"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// CommentPostedPayload payload.
type CommentPostedPayload struct {
	Preview string `json:"preview"`
}
