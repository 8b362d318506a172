package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/shipshape/internal/jsonschema"
	"github.com/leofalp/shipshape/providers/ai"
)

func newTestProvider(serverURL string) *GeminiProvider {
	p := New("test-key")
	p.WithBaseURL(serverURL)
	return p
}

func TestNew(t *testing.T) {
	provider := New("k")
	if provider.baseURL != DefaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", DefaultBaseURL, provider.baseURL)
	}
	if provider.Model() != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, provider.Model())
	}
	if provider.apiKey != "k" {
		t.Errorf("expected injected key, got %q", provider.apiKey)
	}
}

func TestNew_IgnoresEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	if New("").apiKey != "" {
		t.Error("provider must not read the key from the environment")
	}
}

func TestWithOptions(t *testing.T) {
	provider := New("")
	provider.WithAPIKey("test-key")
	provider.WithBaseURL("https://custom.api.com/")
	provider.WithModel("gemini-2.5-pro")
	provider.WithModel("")

	if provider.apiKey != "test-key" {
		t.Errorf("expected apiKey %q, got %q", "test-key", provider.apiKey)
	}
	if provider.baseURL != "https://custom.api.com" {
		t.Errorf("expected trimmed baseURL, got %q", provider.baseURL)
	}
	if provider.Model() != "gemini-2.5-pro" {
		t.Errorf("empty model must not override, got %q", provider.Model())
	}

	provider.WithBaseURL("")
	if provider.baseURL != DefaultBaseURL {
		t.Errorf("empty baseURL should restore default, got %q", provider.baseURL)
	}
}

func TestSendMessage_Basic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing or incorrect x-goog-api-key header: %s", r.Header.Get("x-goog-api-key"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" || req.Contents[0].Parts[0].Text != "hi" {
			t.Errorf("unexpected contents: %+v", req.Contents)
		}

		_ = json.NewEncoder(w).Encode(generateContentResponse{
			ResponseID: "resp-1",
			Candidates: []candidate{{
				Content:      &content{Role: "model", Parts: []part{{Text: "Hello!"}}},
				FinishReason: "STOP",
			}},
			UsageMetadata: &usageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 8, TotalTokenCount: 18},
		})
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "Hello!" {
		t.Errorf("expected content %q, got %q", "Hello!", resp.Content)
	}
	if resp.Id != "resp-1" || resp.Model != DefaultModel || resp.FinishReason != ai.FinishReasonStop {
		t.Errorf("unexpected response metadata: %+v", resp)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 18 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestSendMessage_WithStructuredOutput(t *testing.T) {
	type address struct {
		City string `json:"city" jsonschema:"description=City,required"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "extract" {
			t.Errorf("expected system instruction, got %+v", req.SystemInstruction)
		}
		gc := req.GenerationConfig
		if gc == nil || gc.ResponseMimeType != "application/json" {
			t.Fatalf("expected JSON mime type, got %+v", gc)
		}
		if !strings.Contains(string(gc.ResponseSchema), `"required":["city"]`) {
			t.Errorf("expected schema in request, got %s", gc.ResponseSchema)
		}
		if gc.Temperature == nil || *gc.Temperature != 0 {
			t.Errorf("expected explicit zero temperature, got %v", gc.Temperature)
		}

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"{\"city\":"},{"text":"\"Austin\"}"}]},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	zero := float32(0)
	resp, err := newTestProvider(server.URL).SendMessage(context.Background(), ai.ChatRequest{
		SystemPrompt:     "extract",
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "Austin"}},
		ResponseFormat:   &ai.ResponseFormat{OutputSchema: jsonschema.MustGenerate[address](), Strict: true},
		GenerationConfig: &ai.GenerationConfig{Temperature: &zero},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != `{"city":"Austin"}` {
		t.Errorf("expected parts to be concatenated, got %q", resp.Content)
	}
}

func TestSendMessage_MissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	p := New("")
	p.WithBaseURL(server.URL)
	_, err := p.SendMessage(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if called {
		t.Error("no request must be sent without a key")
	}
}

func TestSendMessage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).SendMessage(context.Background(), ai.ChatRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Status != "PERMISSION_DENIED" || apiErr.Message != "API key not valid" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestSendMessage_APIErrorPlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).SendMessage(context.Background(), ai.ChatRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "upstream unavailable" || apiErr.Status != "" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "502") {
		t.Errorf("expected status code in message, got %q", apiErr.Error())
	}
}

func TestSendMessage_PromptBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).SendMessage(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("expected block reason in error, got %v", err)
	}
}

func TestSendMessage_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProvider(server.URL).SendMessage(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
