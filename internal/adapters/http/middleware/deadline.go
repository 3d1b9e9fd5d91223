package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline returns middleware that attaches a deadline of d to the request
// context. The handler runs on the request goroutine; store calls observe the
// deadline and fail with context.DeadlineExceeded, which surfaces through the
// normal error mapper. A non-positive d leaves the context unchanged.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
