// Package ai defines the provider-agnostic request and response types used to
// talk to hosted text-generation models. Each provider package maps
// [ChatRequest] to its own wire format and back into a [ChatResponse], so the
// extraction service never sees provider-specific payloads.
package ai
