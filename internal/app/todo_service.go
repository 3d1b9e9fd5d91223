// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/page"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// Compile-time check that TodoService implements ports.TodoService.
var _ ports.TodoService = (*TodoService)(nil)

// TodoService implements ports.TodoService on top of a TodoRepository. It owns
// pagination arithmetic and is the only layer that separates "record absent"
// from "store malfunctioned". It holds no state between calls.
type TodoService struct {
	repo   ports.TodoRepository
	logger *slog.Logger
	now    func() time.Time
	newID  func() (string, error)
}

// TodoServiceOption configures a TodoService.
type TodoServiceOption func(*TodoService)

// WithClock overrides the time source used for CreatedAt/UpdatedAt. The
// default clock is UTC truncated to microseconds, the finest resolution every
// supported store keeps.
func WithClock(now func() time.Time) TodoServiceOption {
	return func(s *TodoService) {
		s.now = now
	}
}

// WithIDGenerator overrides how new todo IDs are generated.
func WithIDGenerator(gen func() (string, error)) TodoServiceOption {
	return func(s *TodoService) {
		s.newID = gen
	}
}

// NewTodoService creates a TodoService. A nil logger discards output.
func NewTodoService(repo ports.TodoRepository, logger *slog.Logger, opts ...TodoServiceOption) *TodoService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &TodoService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID:  newUUIDv7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTodo validates and persists a new todo.
func (s *TodoService) CreateTodo(ctx context.Context, title string, description *string) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "creating todo")

	t := &todo.Todo{
		Title:       title,
		Description: description,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate todo id",
			slog.String("operation", "CreateTodo"),
			slog.Any("error", err),
		)
		return nil, err
	}
	t.ID = id
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, s.databaseError(ctx, "CreateTodo", id, err)
	}

	return t, nil
}

// ListTodos returns one page of todos. The page slice and the total count are
// fetched concurrently; both must succeed.
func (s *TodoService) ListTodos(ctx context.Context, params page.Params) (*page.Result[todo.Todo], error) {
	p := params.Normalize()
	s.logger.InfoContext(ctx, "listing todos",
		slog.Int("page", p.Page),
		slog.Int("limit", p.Limit),
	)

	var (
		items []todo.Todo
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, p.Offset(), p.Limit)
		if err != nil {
			return fmt.Errorf("listing page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx)
		if err != nil {
			return fmt.Errorf("counting todos: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, s.databaseError(ctx, "ListTodos", "", err)
	}

	return page.NewResult(items, total, p), nil
}

// GetTodo returns a single todo by ID.
func (s *TodoService) GetTodo(ctx context.Context, id string) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "fetching todo", slog.String("id", id))

	if id == "" {
		return nil, notFound(id)
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "GetTodo", id, err)
	}
	return t, nil
}

// UpdateTodo applies patch semantics: only the fields set on patch change.
// An empty patch returns the current record without writing.
func (s *TodoService) UpdateTodo(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "updating todo", slog.String("id", id))

	if id == "" {
		return nil, notFound(id)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetTodo(ctx, id)
	}

	t, err := s.repo.Update(ctx, id, patch, s.now())
	if err != nil {
		return nil, s.storeError(ctx, "UpdateTodo", id, err)
	}
	return t, nil
}

// DeleteTodo deletes a todo and returns the removed record.
func (s *TodoService) DeleteTodo(ctx context.Context, id string) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "deleting todo", slog.String("id", id))

	if id == "" {
		return nil, notFound(id)
	}

	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "DeleteTodo", id, err)
	}
	return t, nil
}

// DeleteAllTodos removes every todo.
func (s *TodoService) DeleteAllTodos(ctx context.Context) (int64, error) {
	s.logger.WarnContext(ctx, "deleting all todos")

	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, s.databaseError(ctx, "DeleteAllTodos", "", err)
	}

	s.logger.InfoContext(ctx, "deleted all todos", slog.Int64("count", n))
	return n, nil
}

// storeError converts a repository error into a domain error: a not-found
// signal becomes *domain.NotFoundError, everything else *domain.DatabaseError.
func (s *TodoService) storeError(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.InfoContext(ctx, "todo not found",
			slog.String("operation", op),
			slog.String("id", id),
		)
		return notFound(id)
	}
	return s.databaseError(ctx, op, id, err)
}

func (s *TodoService) databaseError(ctx context.Context, op, id string, err error) error {
	s.logger.ErrorContext(ctx, "todo store operation failed",
		slog.String("operation", op),
		slog.String("id", id),
		slog.Any("error", err),
	)
	return &domain.DatabaseError{Op: op, Err: err}
}

func notFound(id string) error {
	return &domain.NotFoundError{Resource: todo.Resource, ID: id}
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating todo id: %w", err)
	}
	return id.String(), nil
}
