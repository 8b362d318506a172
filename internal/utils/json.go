package utils

import (
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StripCodeFences removes a surrounding markdown code fence (```json ... ```)
// from model output. It returns the input unchanged when there is no fence.
func StripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line, including any language hint.
	lines = lines[1:]
	if last := len(lines) - 1; last >= 0 && strings.TrimSpace(lines[last]) == "```" {
		lines = lines[:last]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractJSONCandidate returns the substring spanning the first '{' to the
// last '}' of content, or "" when content holds no object.
func ExtractJSONCandidate(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}

// RepairJSON runs content through jsonrepair, fixing the usual model slips:
// single quotes, unquoted keys, trailing commas, truncated brackets.
func RepairJSON(content string) (string, error) {
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return "", fmt.Errorf("failed to repair JSON: %w", err)
	}
	return repaired, nil
}
