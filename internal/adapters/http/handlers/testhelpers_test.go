package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/validate"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

const testUpdatedValue = "Updated"

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

// todoRoutes mounts h behind the same validation middleware the production
// router uses.
func todoRoutes(h *handlers.TodoHandler) http.Handler {
	r := chi.NewRouter()
	r.With(validate.Request[dto.ListTodosQuery](validate.Query)).Get("/api/v1/todos", h.ListTodos)
	r.With(validate.Request[dto.CreateTodoRequest](validate.Body)).Post("/api/v1/todos", h.CreateTodo)
	r.Group(func(r chi.Router) {
		r.Use(validate.Request[dto.TodoIDParams](validate.Params))
		r.Get("/api/v1/todos/{id}", h.GetTodo)
		r.With(validate.Request[dto.UpdateTodoRequest](validate.Body)).Put("/api/v1/todos/{id}", h.UpdateTodo)
		r.Delete("/api/v1/todos/{id}", h.DeleteTodo)
	})
	return r
}

func serve(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func strPtr(s string) *string { return &s }

func validTodo() todo.Todo {
	return todo.Todo{
		ID:          "0195f0c2-8a4e-7b1c-9d3f-2a6b8c0d1e2f",
		Title:       "Buy groceries",
		Description: strPtr("Milk, eggs, bread"),
		Completed:   false,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) dto.ErrorResponse {
	t.Helper()
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	if resp.Status != "error" {
		t.Errorf("envelope status = %q, want %q", resp.Status, "error")
	}
	if resp.Code != want {
		t.Errorf("code = %q, want %q", resp.Code, want)
	}
	return resp
}
