package client

import (
	"context"
	"errors"
	"strings"

	"github.com/leofalp/shipshape/internal/jsonschema"
	"github.com/leofalp/shipshape/providers/ai"
	"github.com/leofalp/shipshape/providers/observability"
)

var (
	// ErrNilProvider is returned by New when no provider is given.
	ErrNilProvider = errors.New("client: provider is nil")

	// ErrEmptyPrompt is returned by SendMessage for a blank prompt.
	ErrEmptyPrompt = errors.New("client: prompt is empty")
)

// Client sends single-shot requests to an ai.Provider through a middleware chain.
// It is immutable after New and safe for concurrent use.
type Client struct {
	provider ai.Provider
	options  ClientOptions
	send     SendFunc
}

// ClientOptions holds the configuration applied by New.
type ClientOptions struct {
	SystemPrompt     string
	DefaultModel     string
	OutputSchema     *jsonschema.Schema
	GenerationConfig *ai.GenerationConfig
	Observer         observability.Provider
	Middlewares      []Middleware
}

// WithSystemPrompt sets the system instruction sent with every request.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithDefaultModel sets the model used when a request does not override it.
func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

// WithGenerationConfig sets sampling parameters for every request.
func WithGenerationConfig(cfg ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &cfg
	}
}

// WithObserver enables tracing, metrics and logs. The observability
// middleware is always the outermost entry of the chain.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithMiddleware appends middlewares to the chain, outermost first.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// New creates a Client for provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	var options ClientOptions
	for _, opt := range opts {
		opt(&options)
	}

	middlewares := options.Middlewares
	if options.Observer != nil {
		middlewares = append([]Middleware{NewObservabilityMiddleware(options.Observer, options.DefaultModel)}, middlewares...)
	}

	return &Client{
		provider: provider,
		options:  options,
		send:     buildSendChain(provider, middlewares),
	}, nil
}

// SendMessageOption customises a single request.
type SendMessageOption func(*ai.ChatRequest)

// WithModel overrides the model for one request.
func WithModel(model string) SendMessageOption {
	return func(r *ai.ChatRequest) {
		r.Model = model
	}
}

// WithOutputSchema overrides the output schema for one request.
func WithOutputSchema(schema *jsonschema.Schema) SendMessageOption {
	return func(r *ai.ChatRequest) {
		if schema == nil {
			r.ResponseFormat = nil
			return
		}
		r.ResponseFormat = &ai.ResponseFormat{OutputSchema: schema, Strict: true}
	}
}

// SendMessage sends prompt as the only user message and returns the raw
// response. Exactly one provider call is made per invocation.
func (c *Client) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	request := c.buildRequest(prompt)
	for _, opt := range opts {
		opt(&request)
	}

	return c.send(ctx, request)
}

func (c *Client) buildRequest(prompt string) ai.ChatRequest {
	request := ai.ChatRequest{
		Model:            c.options.DefaultModel,
		SystemPrompt:     c.options.SystemPrompt,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: c.options.GenerationConfig,
	}
	if c.options.OutputSchema != nil {
		request.ResponseFormat = &ai.ResponseFormat{OutputSchema: c.options.OutputSchema, Strict: true}
	}
	return request
}

// Provider returns the underlying provider.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Observer returns the configured observer, or nil.
func (c *Client) Observer() observability.Provider {
	return c.options.Observer
}
