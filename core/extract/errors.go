package extract

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput: the input text was empty or whitespace. No request was made.
	KindInvalidInput
	// KindCredentialMissing: no API key is configured. No request was made.
	KindCredentialMissing
	// KindTransportFailure: the request failed or was cancelled, or the API
	// answered with a non-success status or no candidates.
	KindTransportFailure
	// KindSchemaViolation: a reply arrived but did not decode into the six
	// required string fields.
	KindSchemaViolation
)

// String returns the stable upper-case code of k, e.g. "SCHEMA_VIOLATION".
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindCredentialMissing:
		return "CREDENTIAL_MISSING"
	case KindTransportFailure:
		return "TRANSPORT_FAILURE"
	case KindSchemaViolation:
		return "SCHEMA_VIOLATION"
	default:
		return "UNKNOWN"
	}
}

// Error is the only error type returned by Extractor. Err holds the
// underlying cause and may be nil.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "extract: " + messageFor(e.Kind)
	}
	return fmt.Sprintf("extract: %s: %v", messageFor(e.Kind), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind that carries no cause, so that
// errors.Is(err, ErrSchemaViolation) works whatever the cause was.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrCredentialMissing = &Error{Kind: KindCredentialMissing}
	ErrTransportFailure  = &Error{Kind: KindTransportFailure}
	ErrSchemaViolation   = &Error{Kind: KindSchemaViolation}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func messageFor(k Kind) string {
	switch k {
	case KindInvalidInput:
		return "input text is empty"
	case KindCredentialMissing:
		return "no API key configured"
	case KindTransportFailure:
		return "request to the extraction API failed"
	case KindSchemaViolation:
		return "reply does not match the address schema"
	default:
		return "unknown failure"
	}
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
