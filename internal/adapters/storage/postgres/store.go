// Package postgres implements ports.TodoRepository on PostgreSQL using a pgx
// connection pool. Schema migrations are embedded and applied through goose.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jsamuelsen11/todo-service/internal/adapters/storage/migrate"
	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const todoColumns = "id, title, description, completed, created_at, updated_at"

// Compile-time check that Store implements ports.TodoRepository.
var _ ports.TodoRepository = (*Store)(nil)

// Config holds PostgreSQL connection pool settings. Zero values fall back to
// the pool defaults below.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Store is the PostgreSQL todo repository.
type Store struct {
	pool *pgxpool.Pool

	sqlOnce sync.Once
	sqlDB   *sql.DB
}

// Open parses cfg, connects a pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 2
	if cfg.MinConns > 0 {
		poolConfig.MinConns = min(cfg.MinConns, poolConfig.MaxConns)
	}
	poolConfig.MaxConnLifetime = 5 * time.Minute
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolConfig.MaxConnIdleTime = time.Minute
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	// Timestamps are always read back in UTC.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET TIMEZONE='UTC'")
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrator returns a goose migrator bound to this store's pool.
func (s *Store) Migrator() (*migrate.Migrator, error) {
	s.sqlOnce.Do(func() {
		s.sqlDB = stdlib.OpenDBFromPool(s.pool)
	})

	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}
	return migrate.New(s.sqlDB, goose.DialectPostgres, fsys)
}

// Create inserts t. A duplicate id is reported as domain.ErrConflict.
func (s *Store) Create(ctx context.Context, t *todo.Todo) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("inserting todo", t.ID, err)
	}
	return nil
}

// FindByID returns the todo with id or domain.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*todo.Todo, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	if err != nil {
		return nil, mapError("selecting todo", id, err)
	}
	return collectOne(rows, "selecting todo", id)
}

// List returns up to limit todos after skipping offset, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]todo.Todo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, mapError("listing todos", "", err)
	}

	todos, err := pgx.CollectRows(rows, scanTodo)
	if err != nil {
		return nil, mapError("listing todos", "", err)
	}
	return todos, nil
}

// Count returns the total number of todos.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return 0, mapError("counting todos", "", err)
	}
	return n, nil
}

// Update writes the fields set on patch, stamps updated_at with now and
// returns the stored row.
func (s *Store) Update(ctx context.Context, id string, patch todo.Patch, now time.Time) (*todo.Todo, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE todos SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			completed = COALESCE($4, completed),
			updated_at = $5
		WHERE id = $1
		RETURNING `+todoColumns,
		id, patch.Title, patch.Description, patch.Completed, now,
	)
	if err != nil {
		return nil, mapError("updating todo", id, err)
	}
	return collectOne(rows, "updating todo", id)
}

// Delete removes the todo with id and returns the removed row.
func (s *Store) Delete(ctx context.Context, id string) (*todo.Todo, error) {
	rows, err := s.pool.Query(ctx, `DELETE FROM todos WHERE id = $1 RETURNING `+todoColumns, id)
	if err != nil {
		return nil, mapError("deleting todo", id, err)
	}
	return collectOne(rows, "deleting todo", id)
}

// DeleteAll removes every todo and returns how many rows were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, mapError("deleting all todos", "", err)
	}
	return tag.RowsAffected(), nil
}

func scanTodo(row pgx.CollectableRow) (todo.Todo, error) {
	var t todo.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, err
}

func collectOne(rows pgx.Rows, op, id string) (*todo.Todo, error) {
	t, err := pgx.CollectExactlyOneRow(rows, scanTodo)
	if err != nil {
		return nil, mapError(op, id, err)
	}
	return &t, nil
}

// mapError translates driver errors into the repository contract:
// no rows becomes domain.ErrNotFound, a unique violation domain.ErrConflict.
// The driver error stays in the chain.
func mapError(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
