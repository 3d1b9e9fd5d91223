package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/todo-service/internal/platform/telemetry"
)

// Chain composes middleware into one. The first argument is the outermost:
//
//	Chain(Recovery, RequestID, Logging)(handler)
//
// is Recovery(RequestID(Logging(handler))).
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// Stack returns the global middleware every request passes through, outermost
// first: Recovery, RequestID, CorrelationID, OpenTelemetry, Logging, Deadline.
// Recovery wraps everything so a panic anywhere still yields the error
// envelope; Deadline is innermost so the logged duration includes the whole
// handler. metrics may be nil and a non-positive requestTimeout disables the
// deadline.
func Stack(logger *slog.Logger, metrics *telemetry.Metrics, requestTimeout time.Duration) func(http.Handler) http.Handler {
	return Chain(
		Recovery(logger),
		RequestID(),
		CorrelationID(),
		OpenTelemetry(metrics),
		Logging(logger),
		Deadline(requestTimeout),
	)
}
