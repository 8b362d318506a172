package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/shipshape/core/client"
	"github.com/leofalp/shipshape/core/client/middleware"
	"github.com/leofalp/shipshape/core/label"
	"github.com/leofalp/shipshape/internal/jsonschema"
	"github.com/leofalp/shipshape/internal/utils"
	"github.com/leofalp/shipshape/providers/ai"
	"github.com/leofalp/shipshape/providers/ai/gemini"
	"github.com/leofalp/shipshape/providers/observability"
)

// DefaultTimeout bounds one extraction call when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const systemPrompt = `You extract a single postal address from free-form text for a shipping label.
Return a JSON object with exactly these string fields: fullName, street, city, state, country, phoneNumber.
Use an empty string for every field the text does not contain.
Never omit a field and never invent data that is not in the text.`

// ErrNilProvider is returned by New when no provider is given.
var ErrNilProvider = errors.New("extract: provider is nil")

// Config is the injected configuration of an Extractor. The service never
// reads credentials from the environment itself.
type Config struct {
	// APIKey authenticates against the extraction API. Empty disables the
	// feature: every call fails with KindCredentialMissing.
	APIKey string

	// Model overrides the provider's default model.
	Model string

	// BaseURL overrides the API endpoint. Only used by NewGemini.
	BaseURL string

	// Timeout bounds a single call. Zero means DefaultTimeout; negative
	// disables the bound and leaves cancellation to the caller's context.
	Timeout time.Duration

	// LenientJSON runs replies through a JSON repair pass before validation.
	LenientJSON bool
}

type options struct {
	observer   observability.Provider
	logger     *slog.Logger
	logLevel   middleware.LogLevel
	httpClient *http.Client
}

// Option customises an Extractor.
type Option func(*options)

// WithObserver records a span, an outcome counter and a latency histogram
// for every extraction, and passes the observer on to the client.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithLogger logs every provider call at the given verbosity.
func WithLogger(logger *slog.Logger, level middleware.LogLevel) Option {
	return func(o *options) {
		o.logger = logger
		o.logLevel = level
	}
}

// WithHTTPClient sets the HTTP client of the provider.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// Result is the outcome of a successful ExtractFor call.
type Result struct {
	Target  label.Target  `json:"target"`
	Address label.Address `json:"address"`
	Model   string        `json:"model,omitempty"`
	Usage   *ai.Usage     `json:"usage,omitempty"`
}

// Extractor turns free-form text into a label.Address with one call to a
// text-generation API constrained by a strict output schema. It keeps no
// per-call state and is safe for concurrent use.
type Extractor struct {
	cfg        Config
	structured *client.StructuredClient[label.Address]
	validator  *jsonschema.Validator
	observer   observability.Provider
}

// New creates an Extractor on top of provider. A non-empty cfg.APIKey is
// installed on the provider.
func New(provider ai.Provider, cfg Config, opts ...Option) (*Extractor, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIKey != "" {
		provider = provider.WithAPIKey(cfg.APIKey)
	}
	if o.httpClient != nil {
		provider = provider.WithHttpClient(o.httpClient)
	}

	e := &Extractor{cfg: cfg, observer: o.observer}

	temperature := float32(0)
	clientOpts := []func(*client.ClientOptions){
		client.WithSystemPrompt(systemPrompt),
		client.WithDefaultModel(cfg.Model),
		client.WithGenerationConfig(ai.GenerationConfig{Temperature: &temperature}),
	}
	if o.observer != nil {
		clientOpts = append(clientOpts, client.WithObserver(o.observer))
	}
	if o.logger != nil {
		clientOpts = append(clientOpts, client.WithMiddleware(middleware.NewLoggingMiddleware(o.logger, o.logLevel)))
	}
	clientOpts = append(clientOpts, client.WithMiddleware(middleware.NewTimeoutMiddleware(cfg.Timeout)))

	structured, err := client.NewStructured[label.Address](provider, e.parse, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	validator, err := structured.Schema().Compile()
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	e.structured = structured
	e.validator = validator
	return e, nil
}

// NewGemini creates an Extractor backed by the Gemini generateContent API.
func NewGemini(cfg Config, opts ...Option) (*Extractor, error) {
	provider := gemini.New(cfg.APIKey).WithModel(cfg.Model)
	if cfg.BaseURL != "" {
		provider.WithBaseURL(cfg.BaseURL)
	}
	if cfg.Model == "" {
		cfg.Model = provider.Model()
	}
	return New(provider, cfg, opts...)
}

// Available reports whether a credential is configured. When it is false
// every extraction fails with KindCredentialMissing.
func (e *Extractor) Available() bool {
	return e.cfg.APIKey != ""
}

// Model returns the configured model name, which may be empty when the
// provider default applies.
func (e *Extractor) Model() string {
	return e.cfg.Model
}

// ExtractAddress returns the address found in text. On failure the returned
// error is an *Error and the Address is the zero value; callers must not
// merge it into existing data.
func (e *Extractor) ExtractAddress(ctx context.Context, text string) (label.Address, error) {
	res, err := e.run(ctx, "", text)
	if err != nil {
		return label.Address{}, err
	}
	return res.Address, nil
}

// ExtractFor is ExtractAddress for a named address section. The target is
// carried through to the Result and to telemetry only; the extraction itself
// is identical for sender and receiver.
func (e *Extractor) ExtractFor(ctx context.Context, target label.Target, text string) (Result, error) {
	parsed, err := label.ParseTarget(string(target))
	if err != nil {
		return Result{}, newError(KindInvalidInput, err)
	}
	return e.run(ctx, parsed, text)
}

func (e *Extractor) run(ctx context.Context, target label.Target, text string) (Result, error) {
	if e.observer == nil {
		return e.extract(ctx, target, text)
	}

	ctx, span := e.observer.StartSpan(ctx, observability.SpanExtractAddress,
		observability.String(observability.AttrExtractTarget, string(target)),
		observability.Int(observability.AttrExtractInputLength, len(text)),
	)
	defer span.End()

	start := time.Now()
	res, err := e.extract(ctx, target, text)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = strings.ToLower(KindOf(err).String())
		span.RecordError(err)
		span.SetStatus(observability.StatusError, status)
		e.observer.Warn(ctx, "address extraction failed",
			observability.String(observability.AttrExtractTarget, string(target)),
			observability.String(observability.AttrExtractErrorKind, KindOf(err).String()),
			observability.Error(err),
		)
	} else {
		span.SetStatus(observability.StatusOK, status)
	}

	e.observer.Counter(observability.MetricExtractCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, status),
	)
	e.observer.Histogram(observability.MetricExtractDuration).Record(ctx, elapsed.Seconds(),
		observability.String(observability.AttrStatus, status),
	)
	return res, err
}

func (e *Extractor) extract(ctx context.Context, target label.Target, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, newError(KindInvalidInput, nil)
	}
	if !e.Available() {
		return Result{}, newError(KindCredentialMissing, nil)
	}

	resp, err := e.structured.SendMessage(ctx, text)
	if err != nil {
		var parseErr *client.ParseError
		if errors.As(err, &parseErr) {
			return Result{}, newError(KindSchemaViolation, parseErr.Err)
		}
		return Result{}, newError(KindTransportFailure, err)
	}

	model := resp.Model
	if model == "" {
		model = e.cfg.Model
	}
	return Result{Target: target, Address: resp.Data, Model: model, Usage: resp.Usage}, nil
}

// parse is the validating decode step: the reply must be a JSON object
// holding all six address fields as strings before it becomes an Address.
func (e *Extractor) parse(content string) (label.Address, error) {
	cleaned := utils.StripCodeFences(content)
	if e.cfg.LenientJSON && cleaned != "" {
		if candidate := utils.ExtractJSONCandidate(cleaned); candidate != "" {
			cleaned = candidate
		}
		repaired, err := utils.RepairJSON(cleaned)
		if err != nil {
			return label.Address{}, err
		}
		cleaned = repaired
	}
	if cleaned == "" {
		return label.Address{}, errors.New("reply is empty")
	}

	doc, err := e.validator.ValidateJSON([]byte(cleaned))
	if err != nil {
		return label.Address{}, err
	}
	return addressFromDocument(doc)
}

// addressFromDocument reads the address out of the document that passed
// validation. Keys are matched exactly; anything else in the object is ignored.
func addressFromDocument(doc any) (label.Address, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return label.Address{}, fmt.Errorf("reply is %T, not an object", doc)
	}
	field := func(key string) (string, error) {
		v, ok := obj[key].(string)
		if !ok {
			return "", fmt.Errorf("field %q is missing or not a string", key)
		}
		return v, nil
	}

	var (
		addr label.Address
		err  error
	)
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"fullName", &addr.FullName},
		{"street", &addr.Street},
		{"city", &addr.City},
		{"state", &addr.State},
		{"country", &addr.Country},
		{"phoneNumber", &addr.PhoneNumber},
	} {
		if *f.dst, err = field(f.key); err != nil {
			return label.Address{}, err
		}
	}
	return addr, nil
}
