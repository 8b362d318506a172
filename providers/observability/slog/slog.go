// Package slog implements observability.Provider on top of log/slog.
//
// Spans and events are written as log records. Counters and histograms are
// logged at debug level and, when a prometheus.Registerer is supplied with
// WithRegisterer, also exported as Prometheus collectors labelled by the
// value of the observability.AttrStatus attribute.
package slog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leofalp/shipshape/providers/observability"
)

// Observer implements observability.Provider using Go's standard library slog
type Observer struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	metrics    *metricsStore
}

// Option configures an Observer.
type Option func(*Observer)

// WithRegisterer exports counters and histograms to the given registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Observer) {
		o.registerer = reg
	}
}

// New creates a new slog-based observer
func New(logger *slog.Logger, opts ...Option) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Observer{logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	o.metrics = newMetricsStore(logger, o.registerer)
	return o
}

// Ensure Observer implements observability.Provider
var _ observability.Provider = (*Observer)(nil)

// --- TRACING ---

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     attrs,
	}

	logAttrs := []slog.Attr{
		slog.String("span", name),
		slog.String("event", "span.start"),
	}
	logAttrs = appendAttrs(logAttrs, attrs)
	o.logger.LogAttrs(ctx, slog.LevelDebug, "Span started", logAttrs...)

	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	name      string
	startTime time.Time
	logger    *slog.Logger
	attrs     []observability.Attribute
	failed    bool
	mu        sync.Mutex
}

func (s *slogSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logAttrs := []slog.Attr{
		slog.String("span", s.name),
		slog.String("event", "span.end"),
		slog.Duration("duration", time.Since(s.startTime)),
	}
	logAttrs = appendAttrs(logAttrs, s.attrs)

	level := slog.LevelInfo
	if s.failed {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(context.Background(), level, "Span ended", logAttrs...)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *slogSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var statusStr string
	switch code {
	case observability.StatusOK:
		statusStr = "ok"
	case observability.StatusError:
		statusStr = "error"
		s.failed = true
	default:
		statusStr = "unset"
	}

	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, statusStr))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatusDescription, description))
	}
}

func (s *slogSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.LogAttrs(context.Background(), slog.LevelError, "Span error",
		slog.String("span", s.name),
		slog.String("event", "error"),
		slog.String("error", err.Error()),
	)
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logAttrs := []slog.Attr{
		slog.String("span", s.name),
		slog.String("event", name),
	}
	logAttrs = appendAttrs(logAttrs, attrs)
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span event", logAttrs...)
}

// --- METRICS ---

func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.getCounter(name)
}

func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.getHistogram(name)
}

// metricLabel is the only Prometheus label; its value is the AttrStatus attribute.
const metricLabel = "status"

// metricsStore holds metrics in memory (thread-safe)
type metricsStore struct {
	logger     *slog.Logger
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*slogCounter
	histograms map[string]*slogHistogram
}

func newMetricsStore(logger *slog.Logger, reg prometheus.Registerer) *metricsStore {
	return &metricsStore{
		logger:     logger,
		registerer: reg,
		counters:   make(map[string]*slogCounter),
		histograms: make(map[string]*slogHistogram),
	}
}

func (m *metricsStore) getCounter(name string) *slogCounter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter := &slogCounter{name: name, logger: m.logger}
	if m.registerer != nil {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: promName(name),
			Help: "Counter " + name,
		}, []string{metricLabel})
		counter.vec = registerOrExisting(m.registerer, vec)
	}
	m.counters[name] = counter
	return counter
}

func (m *metricsStore) getHistogram(name string) *slogHistogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	histogram := &slogHistogram{name: name, logger: m.logger}
	if m.registerer != nil {
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    promName(name),
			Help:    "Histogram " + name,
			Buckets: prometheus.DefBuckets,
		}, []string{metricLabel})
		histogram.vec = registerOrExisting(m.registerer, vec)
	}
	m.histograms[name] = histogram
	return histogram
}

// registerOrExisting registers c, returning the already registered collector
// when an identical one exists (two observers sharing a registry).
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// promName maps "shipshape.extract.count" to "shipshape_extract_count".
func promName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

func statusLabel(attrs []observability.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == observability.AttrStatus {
			if s, ok := attr.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

type slogCounter struct {
	name   string
	logger *slog.Logger
	vec    *prometheus.CounterVec
	mu     sync.Mutex
	value  int64
}

func (c *slogCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	currentValue := c.value
	c.mu.Unlock()

	if c.vec != nil {
		c.vec.WithLabelValues(statusLabel(attrs)).Add(float64(value))
	}

	logAttrs := []slog.Attr{
		slog.String("metric", c.name),
		slog.String("type", "counter"),
		slog.Int64("value", currentValue),
		slog.Int64("delta", value),
	}
	logAttrs = appendAttrs(logAttrs, attrs)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "Counter", logAttrs...)
}

type slogHistogram struct {
	name   string
	logger *slog.Logger
	vec    *prometheus.HistogramVec
}

func (h *slogHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	if h.vec != nil {
		h.vec.WithLabelValues(statusLabel(attrs)).Observe(value)
	}

	logAttrs := []slog.Attr{
		slog.String("metric", h.name),
		slog.String("type", "histogram"),
		slog.Float64("value", value),
	}
	logAttrs = appendAttrs(logAttrs, attrs)
	h.logger.LogAttrs(ctx, slog.LevelDebug, "Histogram", logAttrs...)
}

// --- LOGGING ---

// LevelTrace sits below Debug and is filtered out unless explicitly enabled.
const LevelTrace = slog.LevelDebug - 4

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs...)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs ...observability.Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}
	o.logger.LogAttrs(ctx, level, msg, appendAttrs(make([]slog.Attr, 0, len(attrs)), attrs)...)
}

func appendAttrs(dst []slog.Attr, attrs []observability.Attribute) []slog.Attr {
	for _, attr := range attrs {
		dst = append(dst, slog.Any(attr.Key, attr.Value))
	}
	return dst
}
