package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ApplyUpdate writes the requested fields plus updated_at in one statement.
	ApplyUpdate(ctx context.Context, id int64, update domain.TicketUpdate, updatedAt time.Time) error
	// StampClosedAt sets closed_at only while it is unset.
	StampClosedAt(ctx context.Context, id int64, closedAt time.Time) error
	Count(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, titulo, descripcion, area_destino, categoria, subcategoria, division, planta,
               prioridad, urgencia_sugerida, responsable_sugerido, responsable_asignado,
               estado, solicitante, created_by, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (titulo, descripcion, area_destino, categoria, subcategoria, division, planta,
            prioridad, urgencia_sugerida, responsable_sugerido, responsable_asignado, estado, solicitante, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Area,
		ticket.Category,
		ticket.Subcategory,
		ticket.Division,
		ticket.Plant,
		ticket.Priority,
		ticket.SuggestedUrgency,
		ticket.SuggestedAssignee,
		ticket.AssignedTo,
		ticket.Status,
		ticket.Requester,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("estado IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("prioridad IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Area != nil {
		args = append(args, *filter.Area)
		clauses = append(clauses, fmt.Sprintf("area_destino=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("responsable_asignado=$%d", len(args)))
	}
	if filter.Requester != nil {
		args = append(args, *filter.Requester)
		clauses = append(clauses, fmt.Sprintf("solicitante=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ApplyUpdate(ctx context.Context, id int64, update domain.TicketUpdate, updatedAt time.Time) error {
	sets := []string{}
	args := []any{}

	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("estado=$%d", len(args)))
	}
	if update.AssignedTo != nil {
		if *update.AssignedTo == "" {
			sets = append(sets, "responsable_asignado=NULL")
		} else {
			args = append(args, *update.AssignedTo)
			sets = append(sets, fmt.Sprintf("responsable_asignado=$%d", len(args)))
		}
	}
	if update.Priority != nil {
		args = append(args, *update.Priority)
		sets = append(sets, fmt.Sprintf("prioridad=$%d", len(args)))
	}
	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at=$%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tickets SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) StampClosedAt(ctx context.Context, id int64, closedAt time.Time) error {
	const query = `UPDATE tickets SET closed_at=$1 WHERE id=$2 AND closed_at IS NULL`
	_, err := r.db.Exec(ctx, query, closedAt, id)
	return err
}

func (r *ticketRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total)
	return total, err
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Area,
		&ticket.Category,
		&ticket.Subcategory,
		&ticket.Division,
		&ticket.Plant,
		&ticket.Priority,
		&ticket.SuggestedUrgency,
		&ticket.SuggestedAssignee,
		&ticket.AssignedTo,
		&ticket.Status,
		&ticket.Requester,
		&ticket.CreatedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
