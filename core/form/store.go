package form

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Store.Get for an unknown id.
var ErrNotFound = errors.New("form: not found")

// ErrStoreFull is returned by Store.Create when the limit is reached.
var ErrStoreFull = errors.New("form: too many open forms")

// DefaultIdleTTL is how long a form may go untouched before the store may
// drop it.
const DefaultIdleTTL = time.Hour

type storeEntry struct {
	form     *Form
	lastSeen time.Time
}

// Store keeps the open forms of a running server in memory. Forms are lost
// on restart. A form not read through Get or Create for longer than the idle
// TTL is dropped, and its pending autofills are cancelled.
type Store struct {
	newForm func() *Form
	limit   int
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	forms map[string]*storeEntry
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithIdleTTL sets how long an untouched form survives. Zero or less keeps
// forms until they are deleted.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.idleTTL = ttl
	}
}

// WithStoreClock sets the clock used for idle tracking.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a store creating forms with newForm. A limit of zero or
// less means unbounded.
func NewStore(newForm func() *Form, limit int, opts ...StoreOption) *Store {
	s := &Store{
		newForm: newForm,
		limit:   limit,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		forms:   make(map[string]*storeEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a new form and returns it. Idle forms are dropped first, so a
// full store only refuses while its forms are in use.
func (s *Store) Create() (*Form, error) {
	s.mu.Lock()
	now := s.now()
	expired := s.sweepLocked(now)
	if s.limit > 0 && len(s.forms) >= s.limit {
		s.mu.Unlock()
		closeAll(expired)
		return nil, ErrStoreFull
	}
	f := s.newForm()
	s.forms[f.ID()] = &storeEntry{form: f, lastSeen: now}
	s.mu.Unlock()

	closeAll(expired)
	return f, nil
}

// Get returns the form with the given id and marks it as used.
func (s *Store) Get(id string) (*Form, error) {
	s.mu.Lock()
	now := s.now()
	e, ok := s.forms[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if s.idleLocked(e, now) {
		delete(s.forms, id)
		s.mu.Unlock()
		e.form.Close()
		return nil, ErrNotFound
	}
	e.lastSeen = now
	s.mu.Unlock()
	return e.form, nil
}

// Delete removes a form and cancels its pending autofills.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.forms[id]
	delete(s.forms, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.form.Close()
	return nil
}

// Len returns the number of open forms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

func (s *Store) idleLocked(e *storeEntry, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(e.lastSeen) > s.idleTTL
}

// sweepLocked removes idle forms and returns them for closing outside the lock.
func (s *Store) sweepLocked(now time.Time) []*Form {
	if s.idleTTL <= 0 {
		return nil
	}
	var expired []*Form
	for id, e := range s.forms {
		if s.idleLocked(e, now) {
			delete(s.forms, id)
			expired = append(expired, e.form)
		}
	}
	return expired
}

func closeAll(forms []*Form) {
	for _, f := range forms {
		f.Close()
	}
}
