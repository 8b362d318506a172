package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned for types that have no JSON Schema
// rendering the providers accept (channels, funcs, recursive structs).
var ErrUnsupportedType = errors.New("unsupported type")

// Schema is the subset of JSON Schema understood by structured-output
// providers. PropertyOrdering is a Gemini extension that fixes the order in
// which the model emits keys; standard validators ignore it.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	PropertyOrdering     []string           `json:"propertyOrdering,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
}

// GenerateJSONSchema builds the schema of T. Pointer types are unwrapped.
func GenerateJSONSchema[T any]() (*Schema, error) {
	g := &generator{inProgress: make(map[reflect.Type]bool)}
	return g.schemaFor(reflect.TypeFor[T]())
}

// MustGenerate is GenerateJSONSchema for package-level schemas of known types.
func MustGenerate[T any]() *Schema {
	s, err := GenerateJSONSchema[T]()
	if err != nil {
		panic(err)
	}
	return s
}

type generator struct {
	inProgress map[reflect.Type]bool
}

func (g *generator) schemaFor(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Slice, reflect.Array:
		items, err := g.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key %s", ErrUnsupportedType, t.Key())
		}
		values, err := g.schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		return g.structSchema(t)
	case reflect.Interface:
		return &Schema{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func (g *generator) structSchema(t reflect.Type) (*Schema, error) {
	if g.inProgress[t] {
		return nil, fmt.Errorf("%w: recursive type %s", ErrUnsupportedType, t)
	}
	g.inProgress[t] = true
	defer delete(g.inProgress, t)

	schema := &Schema{Type: "object", Properties: make(map[string]*Schema)}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}

		fieldSchema, err := g.schemaFor(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		requiredByTag, err := applyTag(field, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		schema.Properties[name] = fieldSchema
		schema.PropertyOrdering = append(schema.PropertyOrdering, name)
		if requiredByTag || (field.Type.Kind() != reflect.Ptr && !omitEmpty) {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema, nil
}

// jsonFieldName resolves the property name of a struct field from its json tag.
func jsonFieldName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty"), false
}

// applyTag copies the jsonschema tag options of field onto schema:
//
//	description=<text>  sets the description (text must not contain a comma)
//	enum=<value>        appends an allowed value, converted to the field kind
//	required            marks the field required even when it is a pointer
func applyTag(field reflect.StructField, schema *Schema) (bool, error) {
	tag := field.Tag.Get("jsonschema")
	if tag == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(item), "=")
		switch {
		case key == "required" && !hasValue:
			required = true
		case key == "description":
			schema.Description = value
		case key == "enum":
			v, err := enumValue(field.Type, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, v)
		}
	}
	return required, nil
}

func enumValue(t reflect.Type, raw string) (any, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not an integer: %w", raw, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not a number: %w", raw, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not a boolean: %w", raw, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: enum on %s", ErrUnsupportedType, t)
	}
}

// JSONString returns the schema as JSON, indented when indent is true.
func (s *Schema) JSONString(indent ...bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if len(indent) > 0 && indent[0] {
		b, err = json.MarshalIndent(s, "", "  ")
	} else {
		b, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(b), nil
}

func (s *Schema) String() string {
	str, err := s.JSONString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return str
}
