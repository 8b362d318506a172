package utils

import (
	"encoding/json"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"single line fence", "```", "```"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractJSONCandidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"prose around object", `Here you go: {"city":"Austin"} hope it helps`, `{"city":"Austin"}`},
		{"nested", `{"a":{"b":1}}`, `{"a":{"b":1}}`},
		{"no object", "no json here", ""},
		{"reversed braces", "} {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONCandidate(tt.input); got != tt.want {
				t.Errorf("ExtractJSONCandidate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	repaired, err := RepairJSON(`{'city': 'Austin', state: "TX",}`)
	if err != nil {
		t.Fatalf("RepairJSON() error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
		t.Fatalf("repaired output is not valid JSON: %v (%s)", err, repaired)
	}
	if decoded["city"] != "Austin" || decoded["state"] != "TX" {
		t.Errorf("unexpected repaired content: %v", decoded)
	}
}
