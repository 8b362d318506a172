package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"

	compiler "github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "schema.json"

// Validator checks decoded JSON documents against a compiled Schema.
// It is safe for concurrent use.
type Validator struct {
	compiled *compiler.Schema
}

// Compile prepares s for validation.
func (s *Schema) Compile() (*Validator, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	c := compiler.NewCompiler()
	if err := c.AddResource(resourceName, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	compiled, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// ValidateJSON decodes data and validates the result. It returns the decoded
// document so callers do not need to parse twice.
func (v *Validator) ValidateJSON(data []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks an already decoded document (as produced by json.Unmarshal
// into an any).
func (v *Validator) Validate(doc any) error {
	if err := v.compiled.Validate(doc); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
