// Package client sits between callers and an [ai.Provider]. A [Client] turns
// a prompt into a single provider call routed through a middleware chain
// (observability, logging, timeout). It keeps no conversation state: every
// SendMessage is one independent request.
//
// For structured output use [NewStructured], which derives the JSON schema of
// T once, attaches it to every request and decodes the reply with a
// [Parser]. Decoding failures are reported as [*ParseError] so callers can tell
// a bad reply apart from a failed call.
package client
