package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/middleware"
)

func TestDeadline_ContextCarriesDeadline(t *testing.T) {
	t.Parallel()

	var (
		deadline    time.Time
		hasDeadline bool
	)
	handler := middleware.Deadline(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	}))

	before := time.Now()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	if !hasDeadline {
		t.Fatal("context has no deadline, want deadline set by Deadline middleware")
	}
	if deadline.Before(before) || deadline.After(before.Add(2*time.Second)) {
		t.Errorf("deadline = %v, want about one second after %v", deadline, before)
	}
}

func TestDeadline_HandlerResponsePassesThrough(t *testing.T) {
	t.Parallel()

	handler := middleware.Deadline(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Custom", "value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
	if rec.Header().Get("X-Custom") != "value" {
		t.Errorf("X-Custom header = %q, want %q", rec.Header().Get("X-Custom"), "value")
	}
}

func TestDeadline_ExpiresDuringSlowHandler(t *testing.T) {
	t.Parallel()

	var ctxErr error
	handler := middleware.Deadline(20 * time.Millisecond)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		ctxErr = r.Context().Err()
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/slow", http.NoBody)
	handler.ServeHTTP(rec, req)

	if !errors.Is(ctxErr, context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want %v", ctxErr, context.DeadlineExceeded)
	}
}

func TestDeadline_ZeroDisables(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	handler := middleware.Deadline(0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	if hasDeadline {
		t.Error("context has a deadline, want none when duration is zero")
	}
}
