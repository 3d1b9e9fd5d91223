package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// TodoRepository defines the persistence port for todos.
// Implemented by the storage adapters; called by the application layer.
//
// Implementations translate storage-specific signals into domain sentinels:
// "no matching row" becomes domain.ErrNotFound and a unique constraint
// violation becomes domain.ErrConflict. Any other failure is returned wrapped
// as-is.
type TodoRepository interface {
	// Create inserts a fully populated todo (ID and timestamps already set).
	Create(ctx context.Context, t *todo.Todo) error

	// FindByID returns the todo with the given ID.
	// Returns domain.ErrNotFound if no row matches.
	FindByID(ctx context.Context, id string) (*todo.Todo, error)

	// List returns at most limit todos after skipping offset, ordered by
	// creation time descending (newest first).
	List(ctx context.Context, offset, limit int) ([]todo.Todo, error)

	// Count returns the total number of todos.
	Count(ctx context.Context) (int64, error)

	// Update applies the patch to the todo with the given ID, stamps
	// UpdatedAt with now, and returns the updated record.
	// Returns domain.ErrNotFound if no row matches.
	Update(ctx context.Context, id string, patch todo.Patch, now time.Time) (*todo.Todo, error)

	// Delete removes the todo with the given ID and returns it.
	// Returns domain.ErrNotFound if no row matches.
	Delete(ctx context.Context, id string) (*todo.Todo, error)

	// DeleteAll removes every todo and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}
