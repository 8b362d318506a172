// Package extract turns free-form address text into a structured
// label.Address using a hosted text-generation model with a strict output
// schema.
//
// Every failure is returned as an *Error whose Kind is one of
// KindInvalidInput, KindCredentialMissing, KindTransportFailure or
// KindSchemaViolation. Blank input and a missing credential are detected
// before any request is made. Exactly one request is made otherwise; there
// are no retries and no caching.
//
// Cancelling the context aborts an in-flight call with KindTransportFailure
// wrapping the context error.
package extract
