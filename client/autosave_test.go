package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inkwell/internal/domain/models"
)

type fakeTimer struct {
	deadline time.Duration
	f        func()
	fired    bool
	stopped  bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires scheduled callbacks synchronously as simulated time
// advances.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{deadline: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.deadline > target {
				continue
			}
			if next == nil || t.deadline < next.deadline {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.deadline
		next.fired = true
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

type recordedSave struct {
	noteID  string
	title   string
	content string
	at      time.Duration
}

type fakeSaver struct {
	mu       sync.Mutex
	clock    *fakeClock
	saves    []recordedSave
	saveErr  error
	onSave   func()
	fetchFor func(noteID string) *models.Note
}

func (s *fakeSaver) Save(_ context.Context, noteID, title, content string) error {
	s.mu.Lock()
	s.saves = append(s.saves, recordedSave{noteID: noteID, title: title, content: content, at: s.clock.Now()})
	hook := s.onSave
	err := s.saveErr
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (s *fakeSaver) Fetch(_ context.Context, noteID string) (*models.Note, error) {
	if s.fetchFor != nil {
		return s.fetchFor(noteID), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.saves[len(s.saves)-1]
	return &models.Note{ID: noteID, Title: last.title, Content: last.content}, nil
}

func (s *fakeSaver) recorded() []recordedSave {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedSave, len(s.saves))
	copy(out, s.saves)
	return out
}

func newTestAutosaver(t *testing.T, opts ...AutosaverOption) (*Autosaver, *fakeClock, *fakeSaver) {
	t.Helper()
	clock := &fakeClock{}
	saver := &fakeSaver{clock: clock}
	all := append([]AutosaverOption{WithClock(clock)}, opts...)
	return NewAutosaver(saver, all...), clock, saver
}

func TestDebounceCoalescesRapidEdits(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)
	saver.Open(&models.Note{ID: "n1", Title: "draft", Content: ""})

	saver.Edit("draft", "first")
	clock.Advance(100 * time.Millisecond)
	saver.Edit("draft", "second")
	clock.Advance(200 * time.Millisecond)
	saver.Edit("draft", "third")

	clock.Advance(499 * time.Millisecond)
	if got := len(store.recorded()); got != 0 {
		t.Fatalf("save fired before the window elapsed: %d saves", got)
	}

	clock.Advance(1 * time.Millisecond)
	saves := store.recorded()
	if len(saves) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(saves))
	}
	if saves[0].content != "third" {
		t.Errorf("saved content = %q, want %q", saves[0].content, "third")
	}
	if saves[0].at != 800*time.Millisecond {
		t.Errorf("save fired at %v, want 800ms", saves[0].at)
	}
	if saver.State() != StateIdle {
		t.Errorf("state after save = %v, want idle", saver.State())
	}
}

func TestEditDuringSaveQueuesFollowupCycle(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)
	saver.Open(&models.Note{ID: "n1"})

	store.onSave = func() {
		// Simulates the user typing while the request is in flight.
		store.onSave = nil
		saver.Edit("t", "newer")
	}

	saver.Edit("t", "older")
	clock.Advance(500 * time.Millisecond)

	if saver.State() != StatePending {
		t.Fatalf("state after mid-flight edit = %v, want pending", saver.State())
	}

	clock.Advance(500 * time.Millisecond)
	saves := store.recorded()
	if len(saves) != 2 {
		t.Fatalf("expected two saves, got %d", len(saves))
	}
	if saves[0].content != "older" || saves[1].content != "newer" {
		t.Errorf("save order = %q then %q, want older then newer", saves[0].content, saves[1].content)
	}
}

func TestSaveFailureKeepsDirtyEditWithoutRetry(t *testing.T) {
	var failures []string
	saver, clock, store := newTestAutosaver(t, WithOnError(func(noteID string, err error) {
		failures = append(failures, noteID)
	}))
	store.saveErr = errors.New("connection refused")
	saver.Open(&models.Note{ID: "n1", Title: "t", Content: "persisted"})

	saver.Edit("t", "unsaved work")
	clock.Advance(500 * time.Millisecond)

	if saver.State() != StateIdle {
		t.Errorf("state after failure = %v, want idle", saver.State())
	}
	if len(failures) != 1 || failures[0] != "n1" {
		t.Errorf("error callback calls = %v, want one for n1", failures)
	}
	if _, _, content := saver.Buffer(); content != "unsaved work" {
		t.Errorf("buffer after failure = %q, the dirty edit must survive", content)
	}

	clock.Advance(time.Minute)
	if got := len(store.recorded()); got != 1 {
		t.Errorf("saves after waiting = %d, failed saves must not retry on their own", got)
	}
}

func TestSuccessfulSaveAppliesCanonicalNote(t *testing.T) {
	var applied *models.Note
	saver, clock, store := newTestAutosaver(t, WithOnSaved(func(n *models.Note) {
		applied = n
	}))
	store.fetchFor = func(noteID string) *models.Note {
		return &models.Note{ID: noteID, Title: "Trimmed", Content: "canonical body"}
	}
	saver.Open(&models.Note{ID: "n1"})

	saver.Edit("  Trimmed  ", "draft body")
	clock.Advance(500 * time.Millisecond)

	if applied == nil {
		t.Fatal("saved callback never fired")
	}
	if applied.Content != "canonical body" {
		t.Errorf("applied content = %q, want the re-fetched canonical note", applied.Content)
	}
	if _, title, content := saver.Buffer(); title != "Trimmed" || content != "canonical body" {
		t.Errorf("buffer = (%q, %q), want canonical values", title, content)
	}
}

func TestNoteSwitchCancelsPendingTimer(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)
	saver.Open(&models.Note{ID: "a"})

	saver.Edit("a", "abandoned")
	clock.Advance(300 * time.Millisecond)
	saver.Open(&models.Note{ID: "b", Title: "b", Content: "fresh"})

	clock.Advance(time.Minute)
	if got := len(store.recorded()); got != 0 {
		t.Errorf("saves after switching notes = %d, pending timer must be cancelled", got)
	}
	if noteID, _, content := saver.Buffer(); noteID != "b" || content != "fresh" {
		t.Errorf("buffer = (%q, %q), want the newly opened note", noteID, content)
	}
}

func TestStaleSaveCompletionIsDiscarded(t *testing.T) {
	var applied []string
	saver, clock, store := newTestAutosaver(t, WithOnSaved(func(n *models.Note) {
		applied = append(applied, n.ID)
	}))
	saver.Open(&models.Note{ID: "a"})

	store.onSave = func() {
		// The user opens another note while a's save is in flight.
		store.onSave = nil
		saver.Open(&models.Note{ID: "b", Title: "b", Content: "b body"})
	}

	saver.Edit("a", "a body")
	clock.Advance(500 * time.Millisecond)

	if len(applied) != 0 {
		t.Errorf("stale completion applied for %v, must be discarded after a switch", applied)
	}
	if saver.State() != StateIdle {
		t.Errorf("state for the new note = %v, want idle", saver.State())
	}
	if noteID, _, content := saver.Buffer(); noteID != "b" || content != "b body" {
		t.Errorf("buffer = (%q, %q), stale completion must not touch the new note", noteID, content)
	}
}

func TestReopenSameNoteMidFlightKeepsLatestEdit(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)
	saver.Open(&models.Note{ID: "n1", Title: "t", Content: "v0"})

	store.onSave = func() {
		// The editor remounts the same note while the save is in
		// flight, then the user keeps typing.
		store.onSave = nil
		saver.Open(&models.Note{ID: "n1", Title: "t", Content: "v0"})
		saver.Edit("t", "v2")
	}

	saver.Edit("t", "v1")
	clock.Advance(500 * time.Millisecond)

	// The stale completion belongs to the old session: it must not
	// overwrite the buffer or cancel the new session's pending cycle.
	if _, _, content := saver.Buffer(); content != "v2" {
		t.Fatalf("buffer = %q, want the post-reopen edit", content)
	}
	if saver.State() != StatePending {
		t.Fatalf("state = %v, want pending for the post-reopen edit", saver.State())
	}

	clock.Advance(500 * time.Millisecond)
	saves := store.recorded()
	if len(saves) != 2 || saves[1].content != "v2" {
		t.Fatalf("saves = %+v, want v1 then v2 persisted", saves)
	}
	if saver.State() != StateIdle {
		t.Errorf("state = %v, want idle after both saves resolve", saver.State())
	}
}

func TestNewerEditSupersedesFetchedCanonical(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)
	saver.Open(&models.Note{ID: "n1"})

	store.onSave = func() {
		store.onSave = nil
		saver.Edit("t", "typed during save")
	}

	saver.Edit("t", "first")
	clock.Advance(500 * time.Millisecond)

	// The first save resolved while a newer edit was buffered; the
	// canonical fetch must not clobber it.
	if _, _, content := saver.Buffer(); content != "typed during save" {
		t.Errorf("buffer = %q, want the newer edit to survive the stale fetch", content)
	}

	clock.Advance(500 * time.Millisecond)
	saves := store.recorded()
	if len(saves) != 2 || saves[1].content != "typed during save" {
		t.Fatalf("expected the queued edit to save second, got %+v", saves)
	}
}

func TestFlushFiresPendingSaveImmediately(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)
	saver.Open(&models.Note{ID: "n1"})

	saver.Edit("t", "body")
	saver.Flush()

	if got := len(store.recorded()); got != 1 {
		t.Fatalf("saves after flush = %d, want 1", got)
	}

	clock.Advance(time.Minute)
	if got := len(store.recorded()); got != 1 {
		t.Errorf("debounce timer fired after flush: %d saves", got)
	}
}

func TestEditWithoutOpenNoteIsIgnored(t *testing.T) {
	saver, clock, store := newTestAutosaver(t)

	saver.Edit("t", "orphan")
	clock.Advance(time.Minute)

	if got := len(store.recorded()); got != 0 {
		t.Errorf("saves without an open note = %d, want 0", got)
	}
	if saver.State() != StateIdle {
		t.Errorf("state = %v, want idle", saver.State())
	}
}
