package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leofalp/shipshape/providers/ai"
)

type city struct {
	Name  string `json:"name" jsonschema:"description=City name,required"`
	State string `json:"state" jsonschema:"required"`
}

func TestNewStructured_AttachesSchema(t *testing.T) {
	provider := &mockProvider{response: &ai.ChatResponse{Content: `{"name":"Springfield","state":"IL"}`}}
	sc, err := NewStructured[city](provider, nil, WithSystemPrompt("extract"))
	if err != nil {
		t.Fatalf("NewStructured() error: %v", err)
	}

	resp, err := sc.SendMessage(context.Background(), "Springfield, IL")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if resp.Data != (city{Name: "Springfield", State: "IL"}) {
		t.Errorf("unexpected data %+v", resp.Data)
	}

	format := provider.requests[0].ResponseFormat
	if format == nil || format.OutputSchema != sc.Schema() || !format.Strict {
		t.Fatalf("expected strict schema on request, got %+v", format)
	}
	if got := sc.Schema().Required; len(got) != 2 {
		t.Errorf("expected two required fields, got %v", got)
	}
}

func TestStructured_ParseErrorIsDistinguishable(t *testing.T) {
	provider := &mockProvider{response: &ai.ChatResponse{Content: "not json"}}
	sc, _ := NewStructured[city](provider, nil)

	_, err := sc.SendMessage(context.Background(), "x")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Content != "not json" {
		t.Errorf("expected raw content to be kept, got %q", parseErr.Content)
	}
}

func TestStructured_ProviderErrorIsNotParseError(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	sc, _ := NewStructured[city](provider, nil)

	_, err := sc.SendMessage(context.Background(), "x")

	var parseErr *ParseError
	if err == nil || errors.As(err, &parseErr) {
		t.Fatalf("expected plain provider error, got %v", err)
	}
}

func TestStructured_CustomParser(t *testing.T) {
	provider := &mockProvider{response: &ai.ChatResponse{Content: "Austin|TX"}}
	parser := func(content string) (city, error) {
		name, state, ok := strings.Cut(content, "|")
		if !ok {
			return city{}, errors.New("no separator")
		}
		return city{Name: name, State: state}, nil
	}

	sc, _ := NewStructured[city](provider, parser)
	resp, err := sc.SendMessage(context.Background(), "x")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if resp.Data.Name != "Austin" || resp.Data.State != "TX" {
		t.Errorf("unexpected data %+v", resp.Data)
	}
}

func TestNewStructured_UnsupportedType(t *testing.T) {
	if _, err := NewStructured[chan int](&mockProvider{}, nil); err == nil {
		t.Fatal("expected schema generation error")
	}
}

func TestJSONParser(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    city
		wantErr bool
	}{
		{"plain", `{"name":"A","state":"B"}`, city{"A", "B"}, false},
		{"fenced", "```json\n{\"name\":\"A\",\"state\":\"B\"}\n```", city{"A", "B"}, false},
		{"extra keys", `{"name":"A","state":"B","zip":"1"}`, city{"A", "B"}, false},
		{"empty", "  ", city{}, true},
		{"malformed", `{"name":`, city{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSONParser[city](tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("JSONParser() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("JSONParser() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
