package domain

import "time"

// AuditEventType captures what kind of fact an audit entry records.
type AuditEventType string

const (
	AuditEventSystem         AuditEventType = "system"
	AuditEventStatusChange   AuditEventType = "status_change"
	AuditEventAssignment     AuditEventType = "assignment"
	AuditEventPriorityChange AuditEventType = "priority_change"
	AuditEventComment        AuditEventType = "comment"
)

// AuditEntry is one immutable fact about a ticket's history. Entries are
// append-only and ordered by ID for display.
type AuditEntry struct {
	ID        int64
	TicketID  int64
	Author    string
	EventType AuditEventType
	Message   string
	Payload   map[string]any
	CreatedAt time.Time
}
