package ports

import (
	"context"

	"github.com/jsamuelsen11/todo-service/internal/domain/page"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// TodoService defines the service port for todo use cases.
// Implemented by the application layer; called by inbound adapters (handlers
// and the todoctl CLI).
//
// Every error returned is classified by domain.KindOf: validation failures,
// domain.ErrNotFound when the store confirmed the record is absent, and
// *domain.DatabaseError for any store malfunction.
type TodoService interface {
	// CreateTodo validates and persists a new todo with server-assigned ID
	// and timestamps. Completed starts false.
	CreateTodo(ctx context.Context, title string, description *string) (*todo.Todo, error)

	// ListTodos returns one page of todos, newest first. Params are clamped,
	// never rejected.
	ListTodos(ctx context.Context, params page.Params) (*page.Result[todo.Todo], error)

	// GetTodo returns a single todo by ID.
	// Returns domain.ErrNotFound if the ID is empty or no todo matches.
	GetTodo(ctx context.Context, id string) (*todo.Todo, error)

	// UpdateTodo applies a partial update and returns the updated todo.
	// Returns domain.ErrNotFound if the ID is empty or no todo matches.
	UpdateTodo(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error)

	// DeleteTodo deletes a todo and returns the deleted record.
	// Returns domain.ErrNotFound if the ID is empty or no todo matches.
	DeleteTodo(ctx context.Context, id string) (*todo.Todo, error)

	// DeleteAllTodos deletes every todo and returns the number removed.
	DeleteAllTodos(ctx context.Context) (int64, error)
}
