package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
)

// Error codes carried in the "code" field of every error envelope.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "UNIQUE_CONSTRAINT_VIOLATION"
	CodeDatabase   = "DATABASE_ERROR"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// Fixed client-facing messages. Internal error detail is never sent.
const (
	MsgValidation = "Validation failed"
	MsgConflict   = "A record with this value already exists"
	MsgDatabase   = "Database operation failed"
	MsgInternal   = "An unexpected error occurred"
)

const statusError = "error"

// ErrorResponse is the error envelope returned for every failed request.
type ErrorResponse struct {
	Status  string        `json:"status"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail is a single field-level violation within an ErrorResponse.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse maps err to an HTTP status and envelope. Classification
// is done once by domain.KindOf; every kind has exactly one mapping.
func NewErrorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Status: statusError}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		resp.Code = CodeValidation
		resp.Message = MsgValidation
		resp.Details = validationDetails(err)
		return http.StatusBadRequest, resp
	case domain.KindNotFound:
		resp.Code = CodeNotFound
		resp.Message = notFoundMessage(err)
		return http.StatusNotFound, resp
	case domain.KindConflict:
		resp.Code = CodeConflict
		resp.Message = MsgConflict
		return http.StatusConflict, resp
	case domain.KindDatabase:
		resp.Code = CodeDatabase
		resp.Message = MsgDatabase
		return http.StatusInternalServerError, resp
	default: // domain.KindUnexpected
		resp.Code = CodeInternal
		resp.Message = MsgInternal
		return http.StatusInternalServerError, resp
	}
}

// WriteErrorResponse writes the error envelope for err. 5xx errors are
// logged with the full error chain using the request-scoped logger.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := NewErrorResponse(err)

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", resp.Code),
			slog.Any("error", err),
		)
	}

	writeEnvelope(w, r, status, resp)
}

// WriteNotFoundRoute writes the 404 envelope for a request that matched no
// route or used a method the route does not support.
func WriteNotFoundRoute(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, r, http.StatusNotFound, ErrorResponse{
		Status:  statusError,
		Code:    CodeNotFound,
		Message: "Cannot " + r.Method + " " + r.URL.Path,
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

func validationDetails(err error) []ErrorDetail {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}

	details := make([]ErrorDetail, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		details = append(details, ErrorDetail{Field: v.Field, Message: v.Message})
	}
	return details
}

func notFoundMessage(err error) string {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "Resource not found"
}
