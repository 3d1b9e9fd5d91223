// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/validate"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. Unknown paths and
// unsupported methods both answer 404 with the error envelope.
func NewRouter(
	todoHandler *handlers.TodoHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.NotFound(dto.WriteNotFoundRoute)
	r.MethodNotAllowed(dto.WriteNotFoundRoute)

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		r.With(validate.Request[dto.ListTodosQuery](validate.Query)).
			Get("/todos", todoHandler.ListTodos)
		r.With(validate.Request[dto.CreateTodoRequest](validate.Body)).
			Post("/todos", todoHandler.CreateTodo)

		r.Group(func(r chi.Router) {
			r.Use(validate.Request[dto.TodoIDParams](validate.Params))

			r.Get("/todos/{id}", todoHandler.GetTodo)
			r.With(validate.Request[dto.UpdateTodoRequest](validate.Body)).
				Put("/todos/{id}", todoHandler.UpdateTodo)
			r.Delete("/todos/{id}", todoHandler.DeleteTodo)
		})
	})

	return r
}
