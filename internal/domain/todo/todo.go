// Package todo defines the Todo entity and its partial-update Patch.
package todo

import (
	"strings"
	"time"

	"github.com/jsamuelsen11/todo-service/internal/domain"
)

// Resource is the name used for todos in not-found errors.
const Resource = "Todo"

// Validation messages shared with the HTTP request schemas.
const (
	MsgTitleRequired = "Title is required"
	MsgTitleEmpty    = "Title must not be empty"
)

// Todo is a persisted task record.
type Todo struct {
	ID          string
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks business rules for the Todo entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation), or nil.
func (t *Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return domain.NewValidationError("title", MsgTitleRequired)
	}
	return nil
}

// Patch holds a partial update. A nil field is left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Validate rejects a patch that would leave the todo without a title.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return domain.NewValidationError("title", MsgTitleEmpty)
	}
	return nil
}

// Apply returns a copy of t with the patch applied. UpdatedAt is not touched.
func (p Patch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
