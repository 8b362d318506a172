// Package server exposes label forms, address autofill and label previews
// over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/shipshape/core/extract"
	"github.com/leofalp/shipshape/core/form"
	"github.com/leofalp/shipshape/core/label"
	"github.com/leofalp/shipshape/core/render"
	"github.com/leofalp/shipshape/core/tracking"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Extractor is the extraction service as seen by the server.
type Extractor interface {
	form.Extractor
	Available() bool
	Model() string
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Extractor Extractor
	Forms     *form.Store
	Tracking  *tracking.Generator
	Logger    *slog.Logger
	// Registry serves /metrics and receives the HTTP collectors. Nil
	// disables both.
	Registry *prometheus.Registry
}

// Handler serves the API.
type Handler struct {
	extractor Extractor
	forms     *form.Store
	tracking  *tracking.Generator
	logger    *slog.Logger
}

// NewRouter creates a chi router with every route registered.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &Handler{
		extractor: deps.Extractor,
		forms:     deps.Forms,
		tracking:  deps.Tracking,
		logger:    deps.Logger,
	}

	r := chi.NewRouter()
	// RequestLogging runs first so a recovered panic still carries the request id.
	r.Use(RequestLogging(deps.Logger))
	r.Use(Recovery(deps.Logger))
	if deps.Registry != nil {
		r.Use(NewMetrics(deps.Registry).Middleware)
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/tracking-number", h.TrackingNumber)
		r.Post("/extract", h.Extract)

		r.Post("/forms", h.CreateForm)
		r.Route("/forms/{id}", func(r chi.Router) {
			r.Get("/", h.GetForm)
			r.Delete("/", h.DeleteForm)
			r.Put("/package", h.SetPackage)
			r.Post("/reset", h.ResetForm)
			r.Post("/tracking", h.RegenerateTracking)
			r.Get("/preview", h.Preview)
			r.Put("/{target}", h.SetAddress)
			r.Post("/{target}/autofill", h.AutoFill)
			r.Delete("/{target}/autofill", h.CancelAutoFill)
		})
	})

	return r
}

type formView struct {
	ID    string          `json:"id"`
	Label label.LabelData `json:"label"`
}

type statusView struct {
	Autofill bool   `json:"autofill"`
	Model    string `json:"model,omitempty"`
	Notice   string `json:"notice,omitempty"`
}

type textRequest struct {
	Text   string       `json:"text"`
	Target label.Target `json:"target,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status tells clients whether autofill is usable.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	view := statusView{}
	if h.extractor != nil && h.extractor.Available() {
		view.Autofill = true
		view.Model = h.extractor.Model()
	} else {
		view.Notice = "Gemini API key missing. Auto-fill features will not work."
	}
	WriteData(w, http.StatusOK, view)
}

// TrackingNumber returns a fresh tracking number not bound to any form.
func (h *Handler) TrackingNumber(w http.ResponseWriter, _ *http.Request) {
	WriteData(w, http.StatusOK, map[string]string{"trackingNumber": h.tracking.Next()})
}

// Extract runs a stateless extraction.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	if req.Target == "" {
		req.Target = label.TargetSender
	}
	if h.extractor == nil {
		WriteError(w, r, extract.ErrCredentialMissing, h.logger)
		return
	}

	result, err := h.extractor.ExtractFor(r.Context(), req.Target, req.Text)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteData(w, http.StatusOK, result)
}

// CreateForm opens a new form with default values.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.Create()
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteData(w, http.StatusCreated, formView{ID: f.ID(), Label: f.Snapshot()})
}

// GetForm returns the current label of a form.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r)
	if !ok {
		return
	}
	WriteData(w, http.StatusOK, formView{ID: f.ID(), Label: f.Snapshot()})
}

// DeleteForm closes a form.
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.Delete(chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAddress replaces the sender or receiver address.
func (h *Handler) SetAddress(w http.ResponseWriter, r *http.Request) {
	f, target, ok := h.formAndTarget(w, r)
	if !ok {
		return
	}

	var addr label.Address
	if err := decodeBody(w, r, &addr); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	if err := f.SetAddress(target, addr); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteData(w, http.StatusOK, formView{ID: f.ID(), Label: f.Snapshot()})
}

// SetPackage replaces the package block.
func (h *Handler) SetPackage(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r)
	if !ok {
		return
	}

	var pkg label.PackageDetails
	if err := decodeBody(w, r, &pkg); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	if err := f.SetPackage(pkg); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteData(w, http.StatusOK, formView{ID: f.ID(), Label: f.Snapshot()})
}

// ResetForm restores the defaults.
func (h *Handler) ResetForm(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r)
	if !ok {
		return
	}
	WriteData(w, http.StatusOK, formView{ID: f.ID(), Label: f.Reset()})
}

// RegenerateTracking assigns a new tracking number to the form.
func (h *Handler) RegenerateTracking(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r)
	if !ok {
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"trackingNumber": f.RegenerateTracking()})
}

// AutoFill extracts an address from free text into the target section.
// The form is only changed on success.
func (h *Handler) AutoFill(w http.ResponseWriter, r *http.Request) {
	f, target, ok := h.formAndTarget(w, r)
	if !ok {
		return
	}

	var req textRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	addr, err := f.AutoFill(r.Context(), target, req.Text)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteData(w, http.StatusOK, extract.Result{Target: target, Address: addr})
}

// CancelAutoFill cancels a pending autofill for the target section.
func (h *Handler) CancelAutoFill(w http.ResponseWriter, r *http.Request) {
	f, target, ok := h.formAndTarget(w, r)
	if !ok {
		return
	}
	f.CancelAutoFill(target)
	w.WriteHeader(http.StatusNoContent)
}

// Preview renders the label as an HTML page, or as Markdown with
// ?format=markdown.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	f, ok := h.form(w, r)
	if !ok {
		return
	}
	data := f.Snapshot()

	if r.URL.Query().Get("format") == "markdown" {
		md, err := render.Markdown(data)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "render failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) (*form.Form, bool) {
	f, err := h.forms.Get(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err, h.logger)
		return nil, false
	}
	return f, true
}

func (h *Handler) formAndTarget(w http.ResponseWriter, r *http.Request) (*form.Form, label.Target, bool) {
	target, err := label.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		WriteError(w, r, fmt.Errorf("%w: %w", errBadTarget, err), h.logger)
		return nil, "", false
	}
	f, ok := h.form(w, r)
	return f, target, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
