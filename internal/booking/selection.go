// Package booking implements the day-selection engine and the final
// reservation submitter shared by the application forms.
package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"maqraa/internal/slots"
)

// SelectionState describes where a day selection is in its lifecycle.
type SelectionState string

const (
	StateUninitialized SelectionState = "uninitialized"
	StateCountChosen   SelectionState = "count_chosen"
	StateDaysPartial   SelectionState = "days_partial"
	StateDaysComplete  SelectionState = "days_complete"
)

// DaySelection enforces "choose exactly N weekdays" for one in-progress
// form. Days are kept in selection order; at capacity the oldest choice is
// silently replaced (last-in-wins, so the form never blocks on "deselect
// something first"). A required count of 7 auto-fills the full week and
// disables manual toggling.
type DaySelection struct {
	required int
	chosen   []int
}

// NewDaySelection returns an uninitialized selection; ChooseCount must run
// before any toggle.
func NewDaySelection() *DaySelection {
	return &DaySelection{}
}

// ChooseCount sets the weekly commitment count and resets chosen days.
// Always legal for 1..7.
func (s *DaySelection) ChooseCount(n int) error {
	if n < 1 || n > 7 {
		return validationf("required day count must be 1..7, got %d", n)
	}
	s.required = n
	if n == 7 {
		s.chosen = slots.AllWeekdays()
	} else {
		s.chosen = nil
	}
	return nil
}

// ToggleDay adds or removes a weekday. A selected day toggles off; below
// capacity the day is appended; at capacity the first-chosen day is
// dropped and the new one appended. With required==7 toggling is a no-op.
func (s *DaySelection) ToggleDay(d int) error {
	if s.required == 0 {
		return validationf("day count not chosen yet")
	}
	if !slots.ValidWeekday(d) {
		return validationf("invalid weekday %d", d)
	}
	if s.required == 7 {
		return nil
	}

	for i, chosen := range s.chosen {
		if chosen == d {
			s.chosen = append(s.chosen[:i], s.chosen[i+1:]...)
			return nil
		}
	}

	if len(s.chosen) == s.required {
		// Replace-oldest: drop the earliest choice, keep order.
		s.chosen = s.chosen[1:]
	}
	s.chosen = append(s.chosen, d)
	return nil
}

// Days returns the chosen weekdays in selection order.
func (s *DaySelection) Days() []int {
	out := make([]int, len(s.chosen))
	copy(out, s.chosen)
	return out
}

// Required returns the required day count (0 while uninitialized).
func (s *DaySelection) Required() int {
	return s.required
}

// Complete reports whether exactly the required number of days is chosen.
func (s *DaySelection) Complete() bool {
	return s.required > 0 && len(s.chosen) == s.required
}

// Validate blocks step advancement while the selection is incomplete.
func (s *DaySelection) Validate() error {
	if s.required == 0 {
		return validationf("day count not chosen yet")
	}
	if !s.Complete() {
		return &IncompleteSelectionError{Have: len(s.chosen), Want: s.required}
	}
	return nil
}

// State derives the current lifecycle state.
func (s *DaySelection) State() SelectionState {
	switch {
	case s.required == 0:
		return StateUninitialized
	case len(s.chosen) == 0:
		return StateCountChosen
	case len(s.chosen) < s.required:
		return StateDaysPartial
	default:
		return StateDaysComplete
	}
}

// FormSession is one multi-step application form in progress. Discarded on
// submit or abandonment.
type FormSession struct {
	ID        string
	Selection *DaySelection
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

// WithSelection runs fn with the session's selection under the session
// lock and refreshes the activity timestamp.
func (fs *FormSession) WithSelection(fn func(*DaySelection) error) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.UpdatedAt = time.Now()
	return fn(fs.Selection)
}

// IsExpired checks if the session has been idle longer than timeout.
func (fs *FormSession) IsExpired(timeout time.Duration) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return time.Since(fs.UpdatedAt) > timeout
}

// SessionStore manages form sessions by opaque id.
type SessionStore struct {
	sessions map[string]*FormSession
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*FormSession),
		timeout:  timeout,
	}
}

// Create starts a new form session.
func (ss *SessionStore) Create() *FormSession {
	now := time.Now()
	session := &FormSession{
		ID:        uuid.NewString(),
		Selection: NewDaySelection(),
		StartedAt: now,
		UpdatedAt: now,
	}

	ss.mu.Lock()
	ss.sessions[session.ID] = session
	ss.mu.Unlock()
	return session
}

// Get returns a live session, or nil if unknown or expired.
func (ss *SessionStore) Get(id string) *FormSession {
	ss.mu.RLock()
	session := ss.sessions[id]
	ss.mu.RUnlock()

	if session == nil || session.IsExpired(ss.timeout) {
		return nil
	}
	return session
}

// Delete removes a session (form submitted or abandoned).
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	delete(ss.sessions, id)
	ss.mu.Unlock()
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}
