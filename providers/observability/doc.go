// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics collection and structured logging throughout shipshape.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency. Callers propagate an active
// [Provider] and [Span] through a [context.Context] using [ContextWithObserver]
// and [ContextWithSpan]; they can be retrieved with [ObserverFromContext] and
// [SpanFromContext]. Both lookups return nil when nothing was attached, so
// instrumented code must nil-check before recording.
//
// The semconv.go file holds the attribute keys, span names and metric names
// shared by the providers, the structured client and the extraction service.
package observability
