package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leofalp/shipshape/core/extract"
	"github.com/leofalp/shipshape/core/form"
	"github.com/leofalp/shipshape/core/label"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error member of Response.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

var (
	errBadTarget = errors.New("unknown address target")
	errBadBody   = errors.New("request body is not valid JSON")
)

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v wrapped in the data envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError maps err to a status code and error code and writes the envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, body := classify(err)
	body.RequestID = RequestIDFromContext(r.Context())

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("code", body.Code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

func classify(err error) (int, *ErrorResponse) {
	var (
		extractErr *extract.Error
		validErr   *label.ValidationError
	)

	switch {
	case errors.As(err, &extractErr):
		return extractStatus(extractErr.Kind), &ErrorResponse{Code: extractErr.Kind.String(), Message: err.Error()}
	case errors.As(err, &validErr):
		return http.StatusBadRequest, &ErrorResponse{Code: "VALIDATION_ERROR", Message: "package validation failed", Fields: validErr.Fields()}
	case errors.Is(err, form.ErrSuperseded):
		return http.StatusConflict, &ErrorResponse{Code: "SUPERSEDED", Message: "a newer autofill request replaced this one"}
	case errors.Is(err, form.ErrNotFound):
		return http.StatusNotFound, &ErrorResponse{Code: "NOT_FOUND", Message: "form not found"}
	case errors.Is(err, form.ErrStoreFull):
		return http.StatusTooManyRequests, &ErrorResponse{Code: "TOO_MANY_FORMS", Message: err.Error()}
	case errors.Is(err, errBadTarget):
		return http.StatusNotFound, &ErrorResponse{Code: "INVALID_TARGET", Message: "target must be sender or receiver"}
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, &ErrorResponse{Code: "INVALID_BODY", Message: err.Error()}
	default:
		return http.StatusInternalServerError, &ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
	}
}

func extractStatus(kind extract.Kind) int {
	switch kind {
	case extract.KindInvalidInput:
		return http.StatusBadRequest
	case extract.KindCredentialMissing:
		return http.StatusServiceUnavailable
	case extract.KindTransportFailure:
		return http.StatusBadGateway
	case extract.KindSchemaViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
