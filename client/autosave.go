package client

import (
	"context"
	"sync"
	"time"

	"inkwell/internal/domain/models"
)

// DefaultDebounceWindow is the quiet period after the last edit before a
// save fires.
const DefaultDebounceWindow = 500 * time.Millisecond

// SaveState is the per-note autosave state.
type SaveState int

const (
	// StateIdle means no unsaved changes and no save in flight.
	StateIdle SaveState = iota
	// StatePending means an edit is buffered and the debounce timer is
	// running.
	StatePending
	// StateSaving means a save request is in flight.
	StateSaving
)

func (s SaveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// NoteSaver persists a note and re-reads its canonical form. *Client
// implements it.
type NoteSaver interface {
	Save(ctx context.Context, noteID, title, content string) error
	Fetch(ctx context.Context, noteID string) (*models.Note, error)
}

// AutosaverOption configures an Autosaver.
type AutosaverOption func(*Autosaver)

// WithDebounceWindow overrides the debounce window.
func WithDebounceWindow(d time.Duration) AutosaverOption {
	return func(a *Autosaver) { a.window = d }
}

// WithClock overrides the timer source.
func WithClock(c Clock) AutosaverOption {
	return func(a *Autosaver) { a.clock = c }
}

// WithOnSaved registers a callback invoked with the canonical note after
// a successful save, when the note is still open and no newer edit
// superseded the saved one.
func WithOnSaved(f func(*models.Note)) AutosaverOption {
	return func(a *Autosaver) { a.onSaved = f }
}

// WithOnError registers a callback invoked when a save fails.
func WithOnError(f func(noteID string, err error)) AutosaverOption {
	return func(a *Autosaver) { a.onError = f }
}

// Autosaver debounces edits to the open note and persists them. Each
// edit restarts the debounce window; at most one save is in flight at a
// time, and an edit arriving mid-flight queues a new save for after the
// in-flight one resolves. A failed save keeps the dirty edit in the
// buffer and does not retry on its own.
type Autosaver struct {
	saver  NoteSaver
	clock  Clock
	window time.Duration

	onSaved func(*models.Note)
	onError func(noteID string, err error)

	mu      sync.Mutex
	state   SaveState
	noteID  string
	title   string
	content string
	editSeq uint64
	// gen advances on every Open and Close and is never reset, so a
	// completion from before a re-open can always be told apart from
	// the current editing session, even for the same note id.
	gen   uint64
	dirty bool
	timer Timer
}

// NewAutosaver creates an autosave coordinator with no note open.
func NewAutosaver(saver NoteSaver, opts ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		saver:  saver,
		clock:  NewRealClock(),
		window: DefaultDebounceWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open switches the coordinator to a note and starts a fresh editing
// session. A pending debounce timer for the previous session is
// cancelled and its buffered edit discarded; a save already in flight
// is left to finish, but its result will not be applied. Re-opening the
// currently open note also starts a fresh session.
func (a *Autosaver) Open(note *models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopTimerLocked()
	a.state = StateIdle
	a.noteID = note.ID
	a.title = note.Title
	a.content = note.Content
	a.editSeq = 0
	a.gen++
	a.dirty = false
}

// Close detaches the coordinator from the open note, dropping any
// buffered edit.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopTimerLocked()
	a.state = StateIdle
	a.noteID = ""
	a.title = ""
	a.content = ""
	a.gen++
	a.dirty = false
}

// Edit records the latest editor contents. With no save in flight the
// debounce timer (re)starts; mid-flight the edit is queued and a new
// save cycle begins once the in-flight one resolves.
func (a *Autosaver) Edit(title, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.noteID == "" {
		return
	}

	a.title = title
	a.content = content
	a.editSeq++

	if a.state == StateSaving {
		a.dirty = true
		return
	}
	a.startTimerLocked()
}

// Flush fires a pending save immediately instead of waiting out the
// debounce window. It is a no-op unless the state is Pending.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.state != StatePending {
		a.mu.Unlock()
		return
	}
	a.stopTimerLocked()
	a.mu.Unlock()
	a.fire()
}

// State reports the current autosave state.
func (a *Autosaver) State() SaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Buffer returns the note id and editor contents currently held by the
// coordinator.
func (a *Autosaver) Buffer() (noteID, title, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.noteID, a.title, a.content
}

func (a *Autosaver) startTimerLocked() {
	a.stopTimerLocked()
	a.state = StatePending
	a.timer = a.clock.AfterFunc(a.window, a.fire)
}

func (a *Autosaver) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.state != StatePending {
		a.mu.Unlock()
		return
	}
	a.state = StateSaving
	a.timer = nil
	noteID := a.noteID
	gen := a.gen
	seq := a.editSeq
	title := a.title
	content := a.content
	a.mu.Unlock()

	ctx := context.Background()
	err := a.saver.Save(ctx, noteID, title, content)
	var canonical *models.Note
	if err == nil {
		canonical, err = a.saver.Fetch(ctx, noteID)
	}

	a.mu.Lock()
	if gen != a.gen {
		// The note was switched, closed, or re-opened while the save
		// was in flight. Stale completions never touch the current
		// session's state or buffer, even for the same note id.
		a.mu.Unlock()
		return
	}

	a.state = StateIdle
	var saved *models.Note
	if err == nil && seq == a.editSeq && canonical != nil {
		a.title = canonical.Title
		a.content = canonical.Content
		saved = canonical
	}
	if a.dirty {
		a.dirty = false
		a.startTimerLocked()
	}
	a.mu.Unlock()

	if err != nil {
		if a.onError != nil {
			a.onError(noteID, err)
		}
		return
	}
	if saved != nil && a.onSaved != nil {
		a.onSaved(saved)
	}
}
