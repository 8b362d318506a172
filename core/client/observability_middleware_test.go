package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leofalp/shipshape/providers/ai"
	"github.com/leofalp/shipshape/providers/observability"
)

// recordingObserver is an observability.Provider that keeps everything in memory.
type recordingObserver struct {
	mu       sync.Mutex
	spans    []*recordingSpan
	counters map[string]int64
	logs     []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{counters: map[string]int64{}}
}

type recordingSpan struct {
	name   string
	ended  bool
	status observability.StatusCode
	err    error
	attrs  []observability.Attribute
}

func (s *recordingSpan) End() { s.ended = true }
func (s *recordingSpan) SetAttributes(a ...observability.Attribute) { s.attrs = append(s.attrs, a...) }
func (s *recordingSpan) SetStatus(c observability.StatusCode, _ string) { s.status = c }
func (s *recordingSpan) RecordError(err error) { s.err = err }
func (s *recordingSpan) AddEvent(string, ...observability.Attribute) {}

func (o *recordingObserver) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	o.mu.Lock()
	defer o.mu.Unlock()
	span := &recordingSpan{name: name, attrs: attrs}
	o.spans = append(o.spans, span)
	return ctx, span
}

type recordingCounter struct {
	o    *recordingObserver
	name string
}

func (c recordingCounter) Add(_ context.Context, v int64, attrs ...observability.Attribute) {
	c.o.mu.Lock()
	defer c.o.mu.Unlock()
	key := c.name
	for _, a := range attrs {
		if a.Key == observability.AttrStatus {
			key += "/" + a.Value.(string)
		}
	}
	c.o.counters[key] += v
}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...observability.Attribute) {}

func (o *recordingObserver) Counter(name string) observability.Counter {
	return recordingCounter{o: o, name: name}
}
func (o *recordingObserver) Histogram(string) observability.Histogram { return noopHistogram{} }
func (o *recordingObserver) log(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logs = append(o.logs, msg)
}
func (o *recordingObserver) Trace(_ context.Context, msg string, _ ...observability.Attribute) { o.log(msg) }
func (o *recordingObserver) Debug(_ context.Context, msg string, _ ...observability.Attribute) { o.log(msg) }
func (o *recordingObserver) Info(_ context.Context, msg string, _ ...observability.Attribute) { o.log(msg) }
func (o *recordingObserver) Warn(_ context.Context, msg string, _ ...observability.Attribute) { o.log(msg) }
func (o *recordingObserver) Error(_ context.Context, msg string, _ ...observability.Attribute) { o.log(msg) }

func TestObservabilityMiddleware_Success(t *testing.T) {
	obs := newRecordingObserver()
	var sawSpan, sawObserver bool

	next := func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		sawSpan = observability.SpanFromContext(ctx) != nil
		sawObserver = observability.ObserverFromContext(ctx) == obs
		return &ai.ChatResponse{Content: "{}", Usage: &ai.Usage{TotalTokens: 12}}, nil
	}

	_, err := NewObservabilityMiddleware(obs, "gemini-2.5-flash")(next)(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sawSpan || !sawObserver {
		t.Errorf("expected span and observer in provider context (span=%v observer=%v)", sawSpan, sawObserver)
	}
	if len(obs.spans) != 1 || obs.spans[0].name != observability.SpanClientSendMessage {
		t.Fatalf("expected one client span, got %+v", obs.spans)
	}
	span := obs.spans[0]
	if !span.ended || span.status != observability.StatusOK {
		t.Errorf("expected ended OK span, got %+v", span)
	}
	if obs.counters[observability.MetricClientRequestCount+"/success"] != 1 {
		t.Errorf("expected success counter, got %v", obs.counters)
	}
	if obs.counters[observability.MetricClientTokensTotal] != 12 {
		t.Errorf("expected token counter, got %v", obs.counters)
	}
}

func TestObservabilityMiddleware_Error(t *testing.T) {
	obs := newRecordingObserver()
	boom := errors.New("boom")

	next := func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) { return nil, boom }

	_, err := NewObservabilityMiddleware(obs, "")(next)(context.Background(), ai.ChatRequest{Model: "m"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error to pass through, got %v", err)
	}

	span := obs.spans[0]
	if !span.ended || span.status != observability.StatusError || !errors.Is(span.err, boom) {
		t.Errorf("expected failed span, got %+v", span)
	}
	if obs.counters[observability.MetricClientRequestCount+"/error"] != 1 {
		t.Errorf("expected error counter, got %v", obs.counters)
	}
}

func TestWithObserver_IsOutermost(t *testing.T) {
	obs := newRecordingObserver()
	var spanSeenByMiddleware bool

	c, _ := New(&mockProvider{},
		WithObserver(obs),
		WithMiddleware(func(next SendFunc) SendFunc {
			return func(ctx context.Context, r ai.ChatRequest) (*ai.ChatResponse, error) {
				spanSeenByMiddleware = observability.SpanFromContext(ctx) != nil
				return next(ctx, r)
			}
		}),
	)

	if _, err := c.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spanSeenByMiddleware {
		t.Error("user middleware should run inside the observability span")
	}
	if c.Observer() != obs {
		t.Error("Observer() should return the configured observer")
	}
}

func TestEffectiveModel(t *testing.T) {
	if effectiveModel("a", "b") != "a" || effectiveModel("", "b") != "b" || effectiveModel("", "") != "" {
		t.Error("unexpected effectiveModel result")
	}
}
