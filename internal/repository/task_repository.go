package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// TaskRepository encapsulates task persistence. Task status flips are direct
// field writes and never touch the audit log.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	SetStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Task, error)
	ListPendingByUser(ctx context.Context, responsible string) ([]domain.TaskWithTicket, error)
}

type taskRepository struct {
	db DBTX
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (ticket_id, descripcion, responsable, estado)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		task.TicketID,
		task.Description,
		task.Responsible,
		task.Status,
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	const query = `
        SELECT id, ticket_id, descripcion, responsable, estado, created_at
        FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.TicketID,
		&task.Description,
		&task.Responsible,
		&task.Status,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) SetStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tasks SET estado=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Task, error) {
	const query = `
        SELECT id, ticket_id, descripcion, responsable, estado, created_at
        FROM tasks WHERE ticket_id=$1 ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.TicketID, &task.Description, &task.Responsible, &task.Status, &task.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *taskRepository) ListPendingByUser(ctx context.Context, responsible string) ([]domain.TaskWithTicket, error) {
	const query = `
        SELECT t.id, t.ticket_id, t.descripcion, t.responsable, t.estado, t.created_at, tk.titulo
        FROM tasks t JOIN tickets tk ON t.ticket_id = tk.id
        WHERE t.responsable=$1 AND t.estado <> 'COMPLETADA'
        ORDER BY t.id ASC`
	rows, err := r.db.Query(ctx, query, responsible)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskWithTicket
	for rows.Next() {
		var task domain.TaskWithTicket
		if err := rows.Scan(&task.ID, &task.TicketID, &task.Description, &task.Responsible, &task.Status, &task.CreatedAt, &task.TicketTitle); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
