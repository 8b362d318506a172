// Package form owns the label being edited. A Form is the single writer of
// its LabelData: every mutation goes through it, and address autofill results
// are only applied while they are still the newest request for their section.
package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/shipshape/core/extract"
	"github.com/leofalp/shipshape/core/label"
	"github.com/leofalp/shipshape/core/tracking"
)

// ErrSuperseded is returned by AutoFill when a newer action on the same
// address section replaced the request before it finished. Nothing was written.
var ErrSuperseded = errors.New("form: autofill superseded by a newer request")

// Extractor is the part of extract.Extractor a Form needs.
type Extractor interface {
	ExtractFor(ctx context.Context, target label.Target, text string) (extract.Result, error)
}

// TrackingSource produces tracking numbers.
type TrackingSource interface {
	Next() string
}

// autofillSlot tracks the newest autofill request of one address section.
type autofillSlot struct {
	generation uint64
	cancel     context.CancelFunc
}

// Form is one label being edited. It is safe for concurrent use.
type Form struct {
	id        string
	extractor Extractor
	tracking  TrackingSource
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	data     label.LabelData
	autofill map[label.Target]*autofillSlot
}

// Option customises a Form.
type Option func(*Form)

// WithID sets the form id instead of a random UUID.
func WithID(id string) Option {
	return func(f *Form) {
		f.id = id
	}
}

// WithTracking sets the tracking number source.
func WithTracking(source TrackingSource) Option {
	return func(f *Form) {
		f.tracking = source
	}
}

// WithClock sets the clock used for the default ship date.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		f.now = now
	}
}

// WithLogger sets the logger for autofill events.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// New returns a form holding the default label with a fresh tracking number.
// A nil extractor disables autofill.
func New(extractor Extractor, opts ...Option) *Form {
	f := &Form{
		extractor: extractor,
		tracking:  tracking.NewGenerator(nil),
		now:       time.Now,
		logger:    slog.Default(),
		autofill:  make(map[label.Target]*autofillSlot),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	f.data = f.defaults()
	return f
}

func (f *Form) defaults() label.LabelData {
	pkg := label.NewPackageDetails(f.now())
	pkg.TrackingNumber = f.tracking.Next()
	return label.LabelData{
		Sender:   label.NewAddress(),
		Receiver: label.NewAddress(),
		Package:  pkg,
	}
}

// ID returns the form id.
func (f *Form) ID() string {
	return f.id
}

// Snapshot returns a copy of the current label.
func (f *Form) Snapshot() label.LabelData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

// SetAddress replaces the target address wholesale. A pending autofill for
// the same section is cancelled so it cannot overwrite the manual edit.
func (f *Form) SetAddress(target label.Target, addr label.Address) error {
	target, err := label.ParseTarget(string(target))
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeLocked(target)
	f.data = f.data.WithAddress(target, addr)
	return nil
}

// SetPackage validates and stores the package block. An empty tracking
// number keeps the current one.
func (f *Form) SetPackage(pkg label.PackageDetails) error {
	if err := pkg.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if pkg.TrackingNumber == "" {
		pkg.TrackingNumber = f.data.Package.TrackingNumber
	}
	f.data.Package = pkg
	return nil
}

// RegenerateTracking assigns and returns a new tracking number.
func (f *Form) RegenerateTracking() string {
	number := f.tracking.Next()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.data.Package.TrackingNumber = number
	return number
}

// Reset restores the default label with a new tracking number and cancels
// every pending autofill.
func (f *Form) Reset() label.LabelData {
	data := f.defaults()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeLocked(label.TargetSender)
	f.supersedeLocked(label.TargetReceiver)
	f.data = data
	return data
}

// AutoFill extracts an address from text and, if this is still the newest
// request for target when it completes, replaces the target address with it.
//
// Starting an AutoFill cancels the previous one for the same target, which
// then returns ErrSuperseded. Any failure leaves the form unchanged; the
// error is an *extract.Error unless the call was superseded.
func (f *Form) AutoFill(ctx context.Context, target label.Target, text string) (label.Address, error) {
	target, err := label.ParseTarget(string(target))
	if err != nil {
		return label.Address{}, &extract.Error{Kind: extract.KindInvalidInput, Err: err}
	}
	if f.extractor == nil {
		return label.Address{}, &extract.Error{Kind: extract.KindCredentialMissing}
	}

	requestID := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	slot := f.supersedeLocked(target)
	slot.cancel = cancel
	generation := slot.generation
	f.mu.Unlock()

	logger := f.logger.With(
		slog.String("form_id", f.id),
		slog.String("request_id", requestID),
		slog.String("target", string(target)),
	)
	logger.DebugContext(ctx, "autofill started", slog.Int("input_length", len(text)))

	result, err := f.extractor.ExtractFor(ctx, target, text)

	f.mu.Lock()
	defer f.mu.Unlock()

	if slot.generation != generation {
		logger.InfoContext(ctx, "autofill superseded")
		return label.Address{}, ErrSuperseded
	}
	slot.cancel = nil

	if err != nil {
		logger.WarnContext(ctx, "autofill failed",
			slog.String("kind", extract.KindOf(err).String()),
			slog.String("error", err.Error()),
		)
		return label.Address{}, err
	}

	f.data = f.data.WithAddress(target, result.Address)
	logger.InfoContext(ctx, "autofill applied", slog.String("model", result.Model))
	return result.Address, nil
}

// CancelAutoFill cancels the pending autofill for target, if any.
func (f *Form) CancelAutoFill(target label.Target) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeLocked(target)
}

// Close cancels every pending autofill. The form stays readable.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supersedeLocked(label.TargetSender)
	f.supersedeLocked(label.TargetReceiver)
}

// supersedeLocked cancels the pending request of target and advances its
// generation. f.mu must be held.
func (f *Form) supersedeLocked(target label.Target) *autofillSlot {
	slot, ok := f.autofill[target]
	if !ok {
		slot = &autofillSlot{}
		f.autofill[target] = slot
	}
	if slot.cancel != nil {
		slot.cancel()
		slot.cancel = nil
	}
	slot.generation++
	return slot
}
