package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leofalp/shipshape/internal/jsonschema"
	"github.com/leofalp/shipshape/internal/utils"
	"github.com/leofalp/shipshape/providers/ai"
)

// Parser decodes the text content of a reply into T.
type Parser[T any] func(content string) (T, error)

// ParseError reports a reply that arrived but could not be decoded into T.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse structured output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StructuredResponse is a reply together with its decoded payload.
type StructuredResponse[T any] struct {
	ai.ChatResponse
	Data T
}

// StructuredClient wraps a Client and provides type-safe structured output.
// The generic parameter T defines the expected response structure: its JSON
// schema is generated once and attached to every request.
//
// Example usage:
//
//	type Address struct {
//	    City string `json:"city" jsonschema:"description=City or locality,required"`
//	}
//
//	sc, err := client.NewStructured[Address](provider, nil, client.WithSystemPrompt("..."))
//	resp, err := sc.SendMessage(ctx, "Springfield, IL")
//	fmt.Println(resp.Data.City, resp.Usage.TotalTokens)
type StructuredClient[T any] struct {
	*Client
	schema *jsonschema.Schema
	parse  Parser[T]
}

// NewStructured creates a StructuredClient[T]. A nil parse uses JSONParser[T].
func NewStructured[T any](provider ai.Provider, parse Parser[T], opts ...func(*ClientOptions)) (*StructuredClient[T], error) {
	schema, err := jsonschema.GenerateJSONSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	if parse == nil {
		parse = JSONParser[T]
	}

	opts = append(opts[:len(opts):len(opts)], func(o *ClientOptions) { o.OutputSchema = schema })
	base, err := New(provider, opts...)
	if err != nil {
		return nil, err
	}

	return &StructuredClient[T]{Client: base, schema: schema, parse: parse}, nil
}

// SendMessage sends prompt and decodes the reply. Provider failures are
// returned as they are; decoding failures are returned as *ParseError.
func (sc *StructuredClient[T]) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*StructuredResponse[T], error) {
	resp, err := sc.Client.SendMessage(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &ParseError{Err: fmt.Errorf("response is nil")}
	}

	data, err := sc.parse(resp.Content)
	if err != nil {
		return nil, &ParseError{Content: resp.Content, Err: err}
	}

	return &StructuredResponse[T]{ChatResponse: *resp, Data: data}, nil
}

// Schema returns the JSON schema used for structured output.
func (sc *StructuredClient[T]) Schema() *jsonschema.Schema {
	return sc.schema
}

// JSONParser strips a surrounding code fence and decodes the remaining JSON
// into T. Unknown keys are ignored.
func JSONParser[T any](content string) (T, error) {
	var out T
	cleaned := utils.StripCodeFences(content)
	if cleaned == "" {
		return out, fmt.Errorf("empty content")
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}
