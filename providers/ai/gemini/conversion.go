package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/shipshape/providers/ai"
)

// requestToGemini converts an ai.ChatRequest to a Gemini generateContentRequest.
func requestToGemini(request ai.ChatRequest) (generateContentRequest, error) {
	req := generateContentRequest{
		Contents: buildContents(request.Messages),
	}

	if request.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.SystemPrompt}},
		}
	}

	gc, err := buildGenerationConfig(request.GenerationConfig, request.ResponseFormat)
	if err != nil {
		return generateContentRequest{}, err
	}
	req.GenerationConfig = gc

	return req, nil
}

// buildContents converts ai.Message slice to Gemini content slice.
// Role mapping: user -> user, assistant -> model. System messages found in the
// conversation are sent as user turns; the real system prompt travels in
// systemInstruction.
func buildContents(messages []ai.Message) []content {
	contents := make([]content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleAssistant:
			if msg.Content == "" {
				continue
			}
			contents = append(contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	return contents
}

// buildGenerationConfig converts ai.GenerationConfig and ai.ResponseFormat to Gemini generationConfig.
func buildGenerationConfig(cfg *ai.GenerationConfig, respFmt *ai.ResponseFormat) (*generationConfig, error) {
	if cfg == nil && respFmt == nil {
		return nil, nil
	}

	gc := &generationConfig{}

	if cfg != nil {
		if cfg.Temperature != nil {
			t := float64(*cfg.Temperature)
			gc.Temperature = &t
		}
		if cfg.TopP > 0 {
			p := float64(cfg.TopP)
			gc.TopP = &p
		}
		if cfg.MaxOutputTokens > 0 {
			n := cfg.MaxOutputTokens
			gc.MaxOutputTokens = &n
		}
	}

	if respFmt != nil {
		switch {
		case respFmt.OutputSchema != nil:
			schemaBytes, err := json.Marshal(respFmt.OutputSchema)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal response schema: %w", err)
			}
			gc.ResponseMimeType = "application/json"
			gc.ResponseSchema = schemaBytes
		case respFmt.Type == "json_object":
			gc.ResponseMimeType = "application/json"
		}
	}

	return gc, nil
}

// geminiToGeneric converts a Gemini generateContentResponse to ai.ChatResponse.
// A response without candidates is an error: there is nothing to parse.
func geminiToGeneric(resp generateContentResponse) (*ai.ChatResponse, error) {
	result := &ai.ChatResponse{
		Id:    resp.ResponseID,
		Model: resp.ModelVersion,
	}

	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
			ReasoningTokens:  resp.UsageMetadata.ThoughtsTokenCount,
		}
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: prompt blocked (%s)", ai.ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return nil, ai.ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	result.FinishReason = mapFinishReason(cand.FinishReason)
	if result.FinishReason == ai.FinishReasonContentFilter {
		result.Refusal = cand.FinishReason
	}

	if cand.Content != nil {
		var text []string
		for _, p := range cand.Content.Parts {
			if p.Text != "" && !p.Thought {
				text = append(text, p.Text)
			}
		}
		result.Content = strings.Join(text, "")
	}

	return result, nil
}

// mapFinishReason converts Gemini finish reason to ai.ChatResponse finish reason.
func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "MAX_TOKENS":
		return ai.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return ai.FinishReasonContentFilter
	default:
		return ai.FinishReasonStop
	}
}
