package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jsamuelsen11/todo-service/internal/domain"
)

// maxBodyBytes limits JSON request bodies to 1 MiB.
const maxBodyBytes = 1 << 20

const (
	kindString  = "string"
	kindBoolean = "boolean"
)

type field struct {
	name string
	kind string
}

// shape is the decoded field layout of a schema type together with the JSON
// schema asserting each field's type.
type shape struct {
	fields []field
	byName map[string]field
	schema *jsonschema.Schema
}

func newShape(t reflect.Type) (*shape, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", t)
	}

	s := &shape{byName: make(map[string]field, t.NumField())}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		var kind string
		switch ft.Kind() {
		case reflect.String:
			kind = kindString
		case reflect.Bool:
			kind = kindBoolean
		default:
			return nil, fmt.Errorf("%s.%s: unsupported field type %s", t, sf.Name, sf.Type)
		}

		f := field{name: name, kind: kind}
		s.fields = append(s.fields, f)
		s.byName[name] = f
	}

	schema, err := compile(t.Name(), s)
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

// decode strips unknown and null fields from raw, coerces "true"/"false"
// strings for boolean fields, asserts field types and unmarshals into dst.
func (s *shape) decode(raw any, dst any) []domain.FieldViolation {
	obj, ok := raw.(map[string]any)
	if !ok {
		return []domain.FieldViolation{{Field: "body", Message: "Expected object"}}
	}

	clean := make(map[string]any, len(obj))
	for k, v := range obj {
		f, known := s.byName[k]
		if !known || v == nil {
			continue
		}
		if f.kind == kindBoolean {
			v = coerceBool(v)
		}
		clean[k] = v
	}

	if err := s.schema.Validate(clean); err != nil {
		return s.violations(err)
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return []domain.FieldViolation{{Field: "body", Message: "Malformed JSON"}}
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return []domain.FieldViolation{{Field: "body", Message: "Malformed JSON"}}
	}
	return nil
}

// violations flattens a schema validation error into one violation per field,
// in declaration order.
func (s *shape) violations(err error) []domain.FieldViolation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []domain.FieldViolation{{Field: "body", Message: err.Error()}}
	}

	found := make(map[string]string)
	collect(ve, func(leaf *jsonschema.ValidationError) {
		name := strings.TrimPrefix(strings.TrimPrefix(leaf.InstanceLocation, "#"), "/")
		if name == "" {
			found["body"] = "Expected object"
			return
		}
		if _, dup := found[name]; dup {
			return
		}
		if f, ok := s.byName[name]; ok && strings.HasSuffix(leaf.KeywordLocation, "/type") {
			found[name] = "Expected " + f.kind
			return
		}
		found[name] = leaf.Message
	})

	out := make([]domain.FieldViolation, 0, len(found))
	if msg, ok := found["body"]; ok {
		out = append(out, domain.FieldViolation{Field: "body", Message: msg})
	}
	for _, f := range s.fields {
		if msg, ok := found[f.name]; ok {
			out = append(out, domain.FieldViolation{Field: f.name, Message: msg})
		}
	}
	return out
}

func collect(ve *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if len(ve.Causes) == 0 {
		fn(ve)
		return
	}
	for _, c := range ve.Causes {
		collect(c, fn)
	}
}

func coerceBool(v any) any {
	if str, ok := v.(string); ok {
		switch str {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return v
}

// readBody parses the JSON body. An empty body is an empty object.
func readBody(w http.ResponseWriter, r *http.Request) (any, *domain.FieldViolation) {
	if r.Body == nil {
		return map[string]any{}, nil
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &domain.FieldViolation{Field: "body", Message: "Request body too large"}
		}
		return nil, &domain.FieldViolation{Field: "body", Message: "Malformed JSON"}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return nil, &domain.FieldViolation{Field: "body", Message: "Malformed JSON"}
	}
	return v, nil
}
