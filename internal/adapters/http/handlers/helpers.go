package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/adapters/http/validate"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeSuccess wraps data in the success envelope.
func writeSuccess[T any](w http.ResponseWriter, status int, data T) {
	writeJSON(w, status, dto.NewSuccessResponse(data))
}

// validated returns the input stored by the validate middleware. A route
// registered without that middleware is a wiring bug and answers 500.
func validated[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	v, ok := validate.FromContext[T](r.Context())
	if !ok {
		dto.WriteErrorResponse(w, r, errMissingInput)
	}
	return v, ok
}

var errMissingInput = errors.New("validated request input missing from context")
