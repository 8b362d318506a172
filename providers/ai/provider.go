package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every text-generation backend satisfies.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// It performs exactly one outbound call and never retries. Returns an
	// error if the call fails, the context is cancelled, or the response
	// cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
