// Package sqlite implements ports.TodoRepository on SQLite using the pure-Go
// modernc driver. It backs local development and the test profile.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jsamuelsen11/todo-service/internal/adapters/storage/migrate"
	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// timeLayout is fixed width so that lexical order of the stored text equals
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const todoColumns = "id, title, description, completed, created_at, updated_at"

// Compile-time check that Store implements ports.TodoRepository.
var _ ports.TodoRepository = (*Store)(nil)

// Store is the SQLite todo repository.
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn (a file path or ":memory:"), applies the
// connection pragmas and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers and keeps an in-memory database
	// alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			closeDB(ctx, db)
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		closeDB(ctx, db)
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return New(db), nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrator returns a goose migrator bound to this store.
func (s *Store) Migrator() (*migrate.Migrator, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}
	return migrate.New(s.db, goose.DialectSQLite3, fsys)
}

// Create inserts t. A duplicate id is reported as domain.ErrConflict.
func (s *Store) Create(ctx context.Context, t *todo.Todo) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, nullString(t.Description), t.Completed,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return mapError("inserting todo", t.ID, err)
	}
	return nil
}

// FindByID returns the todo with id or domain.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*todo.Todo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if err != nil {
		return nil, mapError("selecting todo", id, err)
	}
	return t, nil
}

// List returns up to limit todos after skipping offset, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]todo.Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, mapError("listing todos", "", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close rows", slog.Any("error", err))
		}
	}()

	todos := make([]todo.Todo, 0, limit)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, mapError("listing todos", "", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("listing todos", "", err)
	}
	return todos, nil
}

// Count returns the total number of todos.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return 0, mapError("counting todos", "", err)
	}
	return n, nil
}

// Update writes the fields set on patch, stamps updated_at with now and
// returns the stored row.
func (s *Store) Update(ctx context.Context, id string, patch todo.Patch, now time.Time) (*todo.Todo, error) {
	completed := sql.NullBool{}
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE todos SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			completed = COALESCE(?, completed),
			updated_at = ?
		WHERE id = ?
		RETURNING `+todoColumns,
		nullString(patch.Title), nullString(patch.Description), completed, formatTime(now), id,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, mapError("updating todo", id, err)
	}
	return t, nil
}

// Delete removes the todo with id and returns the removed row.
func (s *Store) Delete(ctx context.Context, id string) (*todo.Todo, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM todos WHERE id = ? RETURNING `+todoColumns, id)
	t, err := scanTodo(row)
	if err != nil {
		return nil, mapError("deleting todo", id, err)
	}
	return t, nil
}

// DeleteAll removes every todo and returns how many rows were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, mapError("deleting all todos", "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError("deleting all todos", "", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*todo.Todo, error) {
	var (
		t                    todo.Todo
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &t.Completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// mapError translates driver errors into the repository contract:
// no rows becomes domain.ErrNotFound, a unique or primary key violation
// domain.ErrConflict. The driver error stays in the chain.
func mapError(op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", op, id, domain.ErrNotFound)
	}

	var sqliteErr *sqlitedrv.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func closeDB(ctx context.Context, db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.ErrorContext(ctx, "error closing database", slog.Any("error", err))
	}
}
