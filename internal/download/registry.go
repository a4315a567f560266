package download

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jara-app/jara/internal/model"
	"github.com/jara-app/jara/internal/platform"
)

// Registry errors
var (
	// ErrDuplicateSession means a session id was created twice; with
	// generated ids this is a programmer error
	ErrDuplicateSession = errors.New("session id already exists")

	// ErrUnknownSession means the id is absent from the registry
	ErrUnknownSession = errors.New("session not found")
)

// entry pairs the session state with the subprocess handle. The handle is
// non-nil exactly while the status is downloading.
type entry struct {
	session model.Session
	proc    *platform.Process
}

// Registry is the in-memory collection of download sessions, keyed by id. All
// operations are serialized through a single mutex so a progress event and a
// status transition cannot interleave on the same session. Entries are never
// evicted automatically; callers must Remove explicitly.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	log      zerolog.Logger
}

// NewRegistry creates an empty session registry
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		log:      log,
	}
}

// Create registers a new session in downloading state owning proc.
// ErrDuplicateSession is returned when the id is already present.
func (r *Registry) Create(id, url string, proc *platform.Process) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return ErrDuplicateSession
	}
	r.sessions[id] = &entry{
		session: model.Session{
			ID:        id,
			URL:       url,
			Status:    model.StatusDownloading,
			StartedAt: time.Now(),
		},
		proc: proc,
	}
	return nil
}

// Get returns a point-in-time copy of the session state
func (r *Registry) Get(id string) (model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.sessions[id]
	if !exists {
		return model.Session{}, false
	}
	return e.session, true
}

// ApplyEvent folds a parsed output event into the session. Events against an
// absent id are dropped; removal may race a still-draining output stream.
func (r *Registry) ApplyEvent(id string, ev platform.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.sessions[id]
	if !exists {
		r.log.Debug().Str("session_id", id).Msg("event for unknown session dropped")
		return
	}

	switch ev := ev.(type) {
	case platform.ProgressEvent:
		e.session.Progress = ev.Percent
	case platform.FilenameEvent:
		// Later events supersede earlier guesses, in arrival order
		e.session.Filename = ev.Name
	}
}

// SetFilename overwrites the session filename, used by reconciliation
func (r *Registry) SetFilename(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.sessions[id]; exists {
		e.session.Filename = name
	}
}

// SetStatus transitions a session to a terminal status. The transition only
// happens while the session is still downloading; a session already terminal
// is left untouched, so a late exit event cannot override a cancellation.
// The released process handle is returned to the caller for termination.
func (r *Registry) SetStatus(id string, status model.SessionStatus, errMsg string) (released *platform.Process, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.sessions[id]
	if !exists {
		return nil, false
	}
	if e.session.Status != model.StatusDownloading {
		return nil, false
	}

	e.session.Status = status
	e.session.FinishedAt = time.Now()
	if status == model.StatusCompleted {
		e.session.Progress = 100
	}
	if status == model.StatusError {
		e.session.ErrorMessage = errMsg
	}

	released = e.proc
	e.proc = nil
	return released, true
}

// Remove deletes a session; removing an absent id is a no-op
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of tracked sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ActiveCount returns the number of sessions still downloading
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.sessions {
		if e.session.Status == model.StatusDownloading {
			count++
		}
	}
	return count
}
