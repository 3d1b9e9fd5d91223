package dto

import (
	"strconv"
	"strings"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/page"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// CreateTodoRequest is the JSON body of POST /api/v1/todos.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Normalize implements validate.Schema.
func (r *CreateTodoRequest) Normalize() {}

// Validate implements validate.Schema.
func (r *CreateTodoRequest) Validate() []domain.FieldViolation {
	if strings.TrimSpace(r.Title) == "" {
		return []domain.FieldViolation{{Field: "title", Message: todo.MsgTitleRequired}}
	}
	return nil
}

// UpdateTodoRequest is the JSON body of PUT /api/v1/todos/{id}. Every field
// is optional; nil means "do not change this field".
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Normalize implements validate.Schema.
func (r *UpdateTodoRequest) Normalize() {}

// Validate implements validate.Schema.
func (r *UpdateTodoRequest) Validate() []domain.FieldViolation {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return []domain.FieldViolation{{Field: "title", Message: todo.MsgTitleEmpty}}
	}
	return nil
}

// Patch converts the request into a domain patch.
func (r *UpdateTodoRequest) Patch() todo.Patch {
	return todo.Patch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// TodoIDParams holds the {id} path parameter. The id is passed through
// verbatim: an id that matches no record, blank ones included, is a 404 from
// the service, never a validation failure.
type TodoIDParams struct {
	ID string `json:"id"`
}

// Normalize implements validate.Schema.
func (p *TodoIDParams) Normalize() {}

// Validate implements validate.Schema.
func (p *TodoIDParams) Validate() []domain.FieldViolation {
	return nil
}

// ListTodosQuery holds the page and limit query parameters. It never fails
// validation: unparsable or out-of-range values fall back to defaults or are
// clamped.
type ListTodosQuery struct {
	Page  string `json:"page"`
	Limit string `json:"limit"`
}

// Normalize implements validate.Schema.
func (q *ListTodosQuery) Normalize() {
	q.Page = strings.TrimSpace(q.Page)
	q.Limit = strings.TrimSpace(q.Limit)
}

// Validate implements validate.Schema.
func (q *ListTodosQuery) Validate() []domain.FieldViolation {
	return nil
}

// Params returns the normalized page parameters.
func (q *ListTodosQuery) Params() page.Params {
	return page.Params{
		Page:  leadingInt(q.Page),
		Limit: leadingInt(q.Limit),
	}.Normalize()
}

// leadingInt reads an optional sign and the leading decimal digits of s,
// ignoring whatever follows ("12abc" is 12, "2.5" is 2), the same leniency as
// JavaScript parseInt. It returns 0 when s has no leading digits. A digit run
// too long for an int saturates at math.MaxInt (or math.MinInt); both clamp
// the same way any large page or limit does.
func leadingInt(s string) int {
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	// The digit run is well formed, so the only possible error is a range
	// error, for which Atoi returns the saturated value.
	n, _ := strconv.Atoi(sign + s[:end])
	return n
}
