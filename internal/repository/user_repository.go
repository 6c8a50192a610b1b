package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// UserRepository manages identity records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id int64, update domain.UserUpdate, updatedAt time.Time) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	GetByNameAndEmail(ctx context.Context, name, email string) (*domain.User, error)
	List(ctx context.Context, onlyActive bool) ([]domain.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository builds the repository.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, nombre_completo, email, rol, area, activo, password_hash, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (nombre_completo, email, rol, area, activo, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.Area,
		user.Active,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, id int64, update domain.UserUpdate, updatedAt time.Time) error {
	sets := []string{}
	args := []any{}

	if update.Role != nil {
		args = append(args, *update.Role)
		sets = append(sets, fmt.Sprintf("rol=$%d", len(args)))
	}
	if update.Area != nil {
		args = append(args, *update.Area)
		sets = append(sets, fmt.Sprintf("area=$%d", len(args)))
	}
	if update.Email != nil {
		args = append(args, *update.Email)
		sets = append(sets, fmt.Sprintf("email=$%d", len(args)))
	}
	if update.Active != nil {
		args = append(args, *update.Active)
		sets = append(sets, fmt.Sprintf("activo=$%d", len(args)))
	}
	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at=$%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id=$1`, userColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE nombre_completo=$1`, userColumns)
	return r.fetchSingle(ctx, query, name)
}

func (r *userRepository) GetByNameAndEmail(ctx context.Context, name, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE nombre_completo=$1 AND email=$2`, userColumns)
	var user domain.User
	if err := scanUser(r.db.QueryRow(ctx, query, name, email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.db.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, onlyActive bool) ([]domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users`, userColumns)
	if onlyActive {
		query += ` WHERE activo = TRUE`
	}
	query += ` ORDER BY nombre_completo ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Area,
		&user.Active,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
