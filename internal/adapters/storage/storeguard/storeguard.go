// Package storeguard decorates a ports.TodoRepository with a circuit breaker,
// OpenTelemetry spans and store operation metrics. It also reports database
// health to the readiness probe.
package storeguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// HealthName is the name the guard registers under in the health registry.
const HealthName = "database"

// ErrUnavailable is returned while the breaker rejects calls.
var ErrUnavailable = errors.New("todo store unavailable")

// Compile-time checks.
var (
	_ ports.TodoRepository = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
)

// Pinger is implemented by stores that can verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Settings configures the circuit breaker.
type Settings struct {
	// System identifies the database engine in spans and metrics
	// (e.g. "postgresql", "sqlite").
	System        string
	MaxFailures   int
	Timeout       time.Duration
	HalfOpenLimit int
}

// Store guards every repository call with a circuit breaker and records a
// span plus duration and count metrics for it. Absent records and unique
// violations are answers, not failures, and never trip the breaker.
type Store struct {
	next    ports.TodoRepository
	system  string
	breaker *gobreaker.CircuitBreaker[any]
	metrics *telemetry.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New wraps next. If metrics is nil, metric recording is skipped. A nil
// logger discards output.
func New(next ports.TodoRepository, s Settings, metrics *telemetry.Metrics, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	maxFailures := s.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        HealthName,
		MaxRequests: toUint32(s.HalfOpenLimit),
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= maxFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Store{
		next:    next,
		system:  s.System,
		breaker: cb,
		metrics: metrics,
		logger:  logger,
		tracer:  otel.GetTracerProvider().Tracer("storeguard"),
	}
}

// Create implements ports.TodoRepository.
func (s *Store) Create(ctx context.Context, t *todo.Todo) error {
	_, err := guard(ctx, s, "create", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.Create(ctx, t)
	})
	return err
}

// FindByID implements ports.TodoRepository.
func (s *Store) FindByID(ctx context.Context, id string) (*todo.Todo, error) {
	return guard(ctx, s, "find_by_id", func(ctx context.Context) (*todo.Todo, error) {
		return s.next.FindByID(ctx, id)
	})
}

// List implements ports.TodoRepository.
func (s *Store) List(ctx context.Context, offset, limit int) ([]todo.Todo, error) {
	return guard(ctx, s, "list", func(ctx context.Context) ([]todo.Todo, error) {
		return s.next.List(ctx, offset, limit)
	})
}

// Count implements ports.TodoRepository.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return guard(ctx, s, "count", s.next.Count)
}

// Update implements ports.TodoRepository.
func (s *Store) Update(ctx context.Context, id string, patch todo.Patch, now time.Time) (*todo.Todo, error) {
	return guard(ctx, s, "update", func(ctx context.Context) (*todo.Todo, error) {
		return s.next.Update(ctx, id, patch, now)
	})
}

// Delete implements ports.TodoRepository.
func (s *Store) Delete(ctx context.Context, id string) (*todo.Todo, error) {
	return guard(ctx, s, "delete", func(ctx context.Context) (*todo.Todo, error) {
		return s.next.Delete(ctx, id)
	})
}

// DeleteAll implements ports.TodoRepository.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	return guard(ctx, s, "delete_all", s.next.DeleteAll)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return HealthName
}

// HealthCheck reports the breaker state and, unless the breaker is open,
// pings the database when the wrapped store supports it.
func (s *Store) HealthCheck(ctx context.Context) error {
	switch state := s.breaker.State(); state {
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", HealthName)
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", HealthName)
	case gobreaker.StateClosed:
	default:
		return fmt.Errorf("%s: unknown circuit breaker state %v", HealthName, state)
	}

	p, ok := s.next.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%s: ping failed: %w", HealthName, err)
	}
	return nil
}

// guard runs fn through the breaker inside a client span and records metrics
// for the call, including rejected ones.
func guard[T any](ctx context.Context, s *Store, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()

	spanCtx, span := s.tracer.Start(ctx, "todos."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.system),
			attribute.String("db.operation", op),
		),
	)
	defer span.End()

	res, err := s.breaker.Execute(func() (any, error) {
		return fn(spanCtx)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.WarnContext(ctx, "todo store call rejected",
			slog.String("operation", op),
			slog.Any("error", err),
		)
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	result := resultOf(err)
	if result != "success" && result != "not_found" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.recordMetrics(ctx, op, start, result)

	v, _ := res.(T)
	return v, err
}

func (s *Store) recordMetrics(ctx context.Context, op string, start time.Time, result string) {
	if s.metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		telemetry.AttrDBSystem.String(s.system),
		telemetry.AttrDBOperation.String(op),
		telemetry.AttrResult.String(result),
	)
	s.metrics.DBOperationDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.DBOperationTotal.Add(ctx, 1, attrs)
}

// isSuccessful decides which errors count against the breaker. Caller
// cancellation says nothing about the database.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, context.Canceled)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnavailable):
		return "circuit_open"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

// toUint32 converts a non-negative int to uint32, clamping at the uint32
// maximum. Negative values are treated as zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if uint64(v) > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}
