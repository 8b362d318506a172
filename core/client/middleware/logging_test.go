package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/shipshape/internal/jsonschema"
	"github.com/leofalp/shipshape/providers/ai"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func okSend(resp *ai.ChatResponse) func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) { return resp, nil }
}

func TestLoggingMiddleware_Standard(t *testing.T) {
	logger, buf := newBufferLogger()
	resp := &ai.ChatResponse{
		Model:        "gemini-2.5-flash",
		Content:      `{"city":"Springfield"}`,
		FinishReason: ai.FinishReasonStop,
		Usage:        &ai.Usage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12},
	}
	request := ai.ChatRequest{
		Model:          "gemini-2.5-flash",
		Messages:       []ai.Message{{Role: ai.RoleUser, Content: "John Smith, 555-1234"}},
		ResponseFormat: &ai.ResponseFormat{OutputSchema: &jsonschema.Schema{Type: "object"}},
	}

	if _, err := NewLoggingMiddleware(logger, LogLevelStandard)(okSend(resp))(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"llm send", "llm send completed", "message_count=1", "structured=true", "finish_reason=stop", "total_tokens=12"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "555-1234") || strings.Contains(output, "Springfield") {
		t.Errorf("standard level must not log message or reply content:\n%s", output)
	}
}

func TestLoggingMiddleware_Minimal(t *testing.T) {
	logger, buf := newBufferLogger()
	resp := &ai.ChatResponse{FinishReason: ai.FinishReasonStop}

	_, _ = NewLoggingMiddleware(logger, LogLevelMinimal)(okSend(resp))(context.Background(), ai.ChatRequest{})

	if output := buf.String(); strings.Contains(output, "message_count") || strings.Contains(output, "finish_reason") {
		t.Errorf("minimal level should omit standard fields:\n%s", output)
	}
}

func TestLoggingMiddleware_Verbose(t *testing.T) {
	logger, buf := newBufferLogger()
	resp := &ai.ChatResponse{Content: strings.Repeat("x", truncateLen+50)}
	request := ai.ChatRequest{Messages: []ai.Message{{Role: ai.RoleUser, Content: "42 Wallaby Way"}}}

	_, _ = NewLoggingMiddleware(logger, LogLevelVerbose)(okSend(resp))(context.Background(), request)

	output := buf.String()
	if !strings.Contains(output, "42 Wallaby Way") {
		t.Errorf("verbose level should log the user text:\n%s", output)
	}
	if !strings.Contains(output, "truncated") {
		t.Errorf("verbose level should truncate long replies:\n%s", output)
	}
}

func TestLoggingMiddleware_Error(t *testing.T) {
	logger, buf := newBufferLogger()
	boom := errors.New("connection reset")
	failing := func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) { return nil, boom }

	_, err := NewLoggingMiddleware(logger, LogLevelStandard)(failing)(context.Background(), ai.ChatRequest{Model: "m"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error to pass through, got %v", err)
	}
	if output := buf.String(); !strings.Contains(output, "llm send failed") || !strings.Contains(output, "connection reset") || !strings.Contains(output, "level=ERROR") {
		t.Errorf("expected error entry:\n%s", output)
	}
}
