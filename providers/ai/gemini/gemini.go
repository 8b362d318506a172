package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leofalp/shipshape/internal/utils"
	"github.com/leofalp/shipshape/providers/ai"
	"github.com/leofalp/shipshape/providers/observability"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

// ErrMissingAPIKey is returned by SendMessage when no key was configured.
var ErrMissingAPIKey = errors.New("gemini: API key is not set")

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	StatusCode int
	Status     string // e.g. "INVALID_ARGUMENT", "UNAUTHENTICATED"
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: %d: %s", e.StatusCode, e.Message)
}

// GeminiProvider implements the ai.Provider interface for Google's Gemini API.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a Gemini provider authenticated with apiKey. An empty key is
// accepted; SendMessage then fails with ErrMissingAPIKey.
func New(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API. An empty value restores the default.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithModel sets the model used when a request does not name one.
func (p *GeminiProvider) WithModel(model string) *GeminiProvider {
	if model != "" {
		p.model = model
	}
	return p
}

// Model returns the model used when a request does not name one.
func (p *GeminiProvider) Model() string {
	return p.model
}

// SendMessage implements the ai.Provider interface.
// It sends a chat request to the Gemini API and returns the response.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := request.Model
	if model == "" {
		model = p.model
	}

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "gemini"),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
		)
		defer span.AddEvent(observability.EventLLMRequestEnd)
	}

	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	geminiReq, err := requestToGemini(request)
	if err != nil {
		return nil, err
	}

	if observer != nil {
		observer.Trace(ctx, "Gemini provider preparing request",
			observability.String(observability.AttrLLMModel, model),
			observability.Bool("structured", geminiReq.GenerationConfig != nil && len(geminiReq.GenerationConfig.ResponseSchema) > 0),
		)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(model))

	httpResponse, resp, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		endpoint,
		"", // Gemini does not use Bearer auth
		geminiReq,
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	if err != nil {
		var statusErr *utils.StatusError
		if errors.As(err, &statusErr) {
			return nil, toAPIError(statusErr)
		}
		return nil, err
	}

	result, err := geminiToGeneric(*resp)
	if err != nil {
		return nil, err
	}
	if result.Model == "" {
		result.Model = model
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, result.Id),
			observability.String(observability.AttrLLMFinishReason, result.FinishReason),
			observability.Int(observability.AttrHTTPStatusCode, httpResponse.StatusCode),
		)
		if result.Usage != nil {
			span.AddEvent(observability.EventTokensReceived,
				observability.Int(observability.AttrLLMTokensTotal, result.Usage.TotalTokens),
			)
		}
	}

	return result, nil
}

// toAPIError decodes the Gemini error envelope, falling back to the raw body.
func toAPIError(statusErr *utils.StatusError) *APIError {
	apiErr := &APIError{StatusCode: statusErr.StatusCode, Message: utils.TruncateStringDefault(statusErr.Body)}

	var body errorResponse
	if err := json.Unmarshal([]byte(statusErr.Body), &body); err == nil && body.Error.Message != "" {
		apiErr.Status = body.Error.Status
		apiErr.Message = body.Error.Message
	}
	return apiErr
}
