package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name  string
		attr  Attribute
		key   string
		value interface{}
	}{
		{"string", String("key", "value"), "key", "value"},
		{"int", Int("count", 42), "count", 42},
		{"int64", Int64("big", 9223372036854775807), "big", int64(9223372036854775807)},
		{"float64", Float64("ratio", 0.5), "ratio", 0.5},
		{"bool", Bool("flag", true), "flag", true},
		{"duration", Duration("elapsed", time.Second), "elapsed", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, tt.attr.Key)
			}
			if tt.attr.Value != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, tt.attr.Value)
			}
		})
	}
}

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != AttrError || attr.Value != "boom" {
		t.Errorf("unexpected attribute %+v", attr)
	}

	attr = Error(nil)
	if attr.Value != "" {
		t.Errorf("expected empty value for nil error, got %v", attr.Value)
	}
}

type mockSpan struct{ name string }

func (m *mockSpan) End() {}
func (m *mockSpan) SetAttributes(...Attribute) {}
func (m *mockSpan) SetStatus(StatusCode, string) {}
func (m *mockSpan) RecordError(error) {}
func (m *mockSpan) AddEvent(string, ...Attribute) {}

type mockObserver struct{ mockSpan }

func (m *mockObserver) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, &m.mockSpan
}
func (m *mockObserver) Counter(string) Counter { return nil }
func (m *mockObserver) Histogram(string) Histogram { return nil }
func (m *mockObserver) Trace(context.Context, string, ...Attribute) {}
func (m *mockObserver) Debug(context.Context, string, ...Attribute) {}
func (m *mockObserver) Info(context.Context, string, ...Attribute) {}
func (m *mockObserver) Warn(context.Context, string, ...Attribute) {}
func (m *mockObserver) Error(context.Context, string, ...Attribute) {}

func TestSpanFromContext(t *testing.T) {
	if span := SpanFromContext(context.Background()); span != nil {
		t.Errorf("expected nil span from empty context, got %v", span)
	}

	span1 := &mockSpan{name: "span-1"}
	span2 := &mockSpan{name: "span-2"}
	ctx := ContextWithSpan(context.Background(), span1)
	ctx = ContextWithSpan(ctx, span2)

	if got := SpanFromContext(ctx); got != span2 {
		t.Errorf("expected innermost span, got %v", got)
	}
}

func TestObserverFromContext(t *testing.T) {
	if obs := ObserverFromContext(context.Background()); obs != nil {
		t.Errorf("expected nil observer from empty context, got %v", obs)
	}

	obs := &mockObserver{}
	ctx := ContextWithObserver(context.Background(), obs)
	if got := ObserverFromContext(ctx); got != obs {
		t.Errorf("expected stored observer, got %v", got)
	}

	// span and observer keys must not collide
	if span := SpanFromContext(ctx); span != nil {
		t.Errorf("expected no span, got %v", span)
	}
}
