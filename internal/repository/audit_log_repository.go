package repository

import (
	"context"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// AuditLogRepository stores the append-only ticket journal. There is no
// update or delete: entries are immutable once written.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error)
}

type auditLogRepository struct {
	db DBTX
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(db DBTX) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO ticket_log (ticket_id, author, event_type, message, payload)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Author,
		entry.EventType,
		entry.Message,
		entry.Payload,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, ticket_id, author, event_type, message, payload, created_at
        FROM ticket_log WHERE ticket_id=$1 ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Author,
			&entry.EventType,
			&entry.Message,
			&entry.Payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
