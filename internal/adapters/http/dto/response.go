// Package dto provides HTTP request schemas, response envelopes and the error
// mapper for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/jsamuelsen11/todo-service/internal/domain/page"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// timeFormat renders timestamps as ISO 8601 UTC with millisecond precision.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

const statusSuccess = "success"

// SuccessResponse is the envelope for every successful response with a body.
type SuccessResponse[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse[T any](data T) SuccessResponse[T] {
	return SuccessResponse[T]{Status: statusSuccess, Data: data}
}

// TodoResponse represents a single todo in HTTP responses.
type TodoResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// ToTodoResponse converts a domain Todo to its HTTP representation.
func ToTodoResponse(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timeFormat),
	}
}

// MetadataResponse describes where a page sits in the full result set.
type MetadataResponse struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
}

// TodoPageResponse is one page of todos plus metadata.
type TodoPageResponse struct {
	Data     []TodoResponse   `json:"data"`
	Metadata MetadataResponse `json:"metadata"`
}

// ToTodoPageResponse converts a page of domain todos. Data is never null.
func ToTodoPageResponse(res *page.Result[todo.Todo]) TodoPageResponse {
	items := make([]TodoResponse, len(res.Data))
	for i := range res.Data {
		items[i] = ToTodoResponse(&res.Data[i])
	}
	return TodoPageResponse{
		Data: items,
		Metadata: MetadataResponse{
			Total:       res.Metadata.Total,
			CurrentPage: res.Metadata.CurrentPage,
			PageSize:    res.Metadata.PageSize,
			TotalPages:  res.Metadata.TotalPages,
		},
	}
}

// ParseTime parses a timestamp rendered by ToTodoResponse.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}
