// Package validate provides request validation middleware. Each route names
// the request part it reads (body, query, path params or headers) and the
// schema type it decodes into; a valid, normalized value is stored in the
// request context and an invalid one is answered with a 400 without calling
// the handler.
//
//	r.With(validate.Request[dto.CreateTodoRequest](validate.Body)).Post("/todos", h.CreateTodo)
//
//	req, _ := validate.FromContext[dto.CreateTodoRequest](r.Context())
package validate

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jsamuelsen11/todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-service/internal/domain"
)

// Source names the part of the request a schema is read from.
type Source int

const (
	Body Source = iota
	Query
	Params
	Headers
)

func (s Source) String() string {
	switch s {
	case Body:
		return "body"
	case Query:
		return "query"
	case Params:
		return "params"
	case Headers:
		return "headers"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Schema is implemented by request types. Normalize runs before Validate and
// may rewrite fields (trimming, defaults); Validate reports every violation.
type Schema interface {
	Normalize()
	Validate() []domain.FieldViolation
}

// ctxKey is keyed by the schema type so several validated values can share
// one request context.
type ctxKey[T any] struct{}

// Request returns middleware that decodes src into a fresh T. Fields are
// matched by their json tag; unknown fields are dropped. JSON type mismatches,
// malformed bodies and the schema's own Validate violations all produce a
// VALIDATION_ERROR response.
//
// Request panics if T is not a struct made of string and bool fields (or
// pointers to them).
func Request[T any, PT interface {
	*T
	Schema
}](src Source) func(http.Handler) http.Handler {
	s, err := newShape(reflect.TypeFor[T]())
	if err != nil {
		panic(fmt.Sprintf("validate: %v", err))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, violation := read(w, r, src)
			if violation != nil {
				dto.WriteErrorResponse(w, r, &domain.ValidationError{Violations: []domain.FieldViolation{*violation}})
				return
			}

			var v T
			if violations := s.decode(raw, &v); len(violations) > 0 {
				dto.WriteErrorResponse(w, r, &domain.ValidationError{Violations: violations})
				return
			}

			PT(&v).Normalize()
			if violations := PT(&v).Validate(); len(violations) > 0 {
				dto.WriteErrorResponse(w, r, &domain.ValidationError{Violations: violations})
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey[T]{}, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the validated T stored by Request.
func FromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKey[T]{}).(T)
	return v, ok
}

// read collects the raw values of src. Body is parsed JSON; the other sources
// are flat string maps.
func read(w http.ResponseWriter, r *http.Request, src Source) (any, *domain.FieldViolation) {
	switch src {
	case Body:
		return readBody(w, r)
	case Query:
		values := r.URL.Query()
		out := make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		return out, nil
	case Params:
		out := make(map[string]any)
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, k := range rctx.URLParams.Keys {
				if _, seen := out[k]; !seen && i < len(rctx.URLParams.Values) {
					out[k] = rctx.URLParams.Values[i]
				}
			}
		}
		return out, nil
	case Headers:
		out := make(map[string]any, len(r.Header))
		for k, vs := range r.Header {
			if len(vs) > 0 {
				out[strings.ToLower(k)] = vs[0]
			}
		}
		return out, nil
	default:
		return nil, &domain.FieldViolation{Field: src.String(), Message: "Unsupported request source"}
	}
}

// compile builds the JSON schema for a shape. Only property types are
// asserted; presence and content rules belong to Schema.Validate.
func compile(name string, s *shape) (*jsonschema.Schema, error) {
	props := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		props = append(props, fmt.Sprintf("%q:{\"type\":%q}", f.name, f.kind))
	}
	doc := `{"type":"object","properties":{` + strings.Join(props, ",") + `}}`

	schema, err := jsonschema.CompileString(name+".json", doc)
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %s: %w", name, err)
	}
	return schema, nil
}
