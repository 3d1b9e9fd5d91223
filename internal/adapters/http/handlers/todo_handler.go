package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// TodoHandler handles HTTP requests for todo CRUD operations. Inputs are
// decoded and validated by the validate middleware on each route.
type TodoHandler struct {
	service ports.TodoService
}

// NewTodoHandler creates a new TodoHandler with the given service port.
func NewTodoHandler(service ports.TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// ListTodos handles GET /api/v1/todos.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	q, ok := validated[dto.ListTodosQuery](w, r)
	if !ok {
		return
	}

	res, err := h.service.ListTodos(r.Context(), q.Params())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTodoPageResponse(res))
}

// CreateTodo handles POST /api/v1/todos.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	req, ok := validated[dto.CreateTodoRequest](w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateTodo(r.Context(), req.Title, req.Description)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, dto.ToTodoResponse(created))
}

// GetTodo handles GET /api/v1/todos/{id}.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := validated[dto.TodoIDParams](w, r)
	if !ok {
		return
	}

	t, err := h.service.GetTodo(r.Context(), p.ID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTodoResponse(t))
}

// UpdateTodo handles PUT /api/v1/todos/{id}. Only the fields present in the
// body change.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := validated[dto.TodoIDParams](w, r)
	if !ok {
		return
	}
	req, ok := validated[dto.UpdateTodoRequest](w, r)
	if !ok {
		return
	}

	updated, err := h.service.UpdateTodo(r.Context(), p.ID, req.Patch())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToTodoResponse(updated))
}

// DeleteTodo handles DELETE /api/v1/todos/{id}. A 204 carries no body.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := validated[dto.TodoIDParams](w, r)
	if !ok {
		return
	}

	if _, err := h.service.DeleteTodo(r.Context(), p.ID); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
