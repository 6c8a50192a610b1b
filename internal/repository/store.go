package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories over one logical database and provides a
// transaction boundary for multi-statement operations.
type Store interface {
	Tickets() TicketRepository
	Tasks() TaskRepository
	AuditLog() AuditLogRepository
	Users() UserRepository
	Catalogs() CatalogRepository
	// WithinTx runs fn against a store whose repositories share a single
	// transaction. The transaction commits when fn returns nil and rolls
	// back otherwise. Nested calls reuse the enclosing transaction.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgxStore struct {
	pool *pgxpool.Pool
	db   DBTX

	tickets  TicketRepository
	tasks    TaskRepository
	auditLog AuditLogRepository
	users    UserRepository
	catalogs CatalogRepository
}

// NewStore builds a Store over a pgx pool.
func NewStore(pool *pgxpool.Pool) Store {
	return newPgxStore(pool, pool)
}

func newPgxStore(pool *pgxpool.Pool, db DBTX) *pgxStore {
	return &pgxStore{
		pool:     pool,
		db:       db,
		tickets:  NewTicketRepository(db),
		tasks:    NewTaskRepository(db),
		auditLog: NewAuditLogRepository(db),
		users:    NewUserRepository(db),
		catalogs: NewCatalogRepository(db),
	}
}

func (s *pgxStore) Tickets() TicketRepository    { return s.tickets }
func (s *pgxStore) Tasks() TaskRepository        { return s.tasks }
func (s *pgxStore) AuditLog() AuditLogRepository { return s.auditLog }
func (s *pgxStore) Users() UserRepository        { return s.users }
func (s *pgxStore) Catalogs() CatalogRepository  { return s.catalogs }

func (s *pgxStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, alreadyTx := s.db.(pgx.Tx); alreadyTx {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	txStore := newPgxStore(s.pool, tx)
	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
