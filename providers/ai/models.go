package ai

import (
	"errors"

	"github.com/leofalp/shipshape/internal/jsonschema"
)

// ErrEmptyResponse is returned by providers when the API answered
// successfully but produced no candidate at all (for example a blocked prompt).
var ErrEmptyResponse = errors.New("provider returned no candidates")

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Conversation, excluding the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
}

type GenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`       // Sampling temperature; nil leaves the provider default
	TopP            float32  `json:"top_p,omitempty"`             // Nucleus sampling [0..1]
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"` // Upper bound on generated tokens
}

type ResponseFormat struct {
	OutputSchema *jsonschema.Schema `json:"output_schema,omitempty"` // Schema the reply must follow
	Strict       bool               `json:"strict,omitempty"`        // Ask the provider to enforce OutputSchema
	Type         string             `json:"type,omitempty"`          // "text" or "json_object" when no schema is given
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"` // Thinking tokens, billed but not returned
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	Refusal      string `json:"refusal,omitempty"` // Set when the provider blocked the reply
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Finish reasons normalised across providers.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)
