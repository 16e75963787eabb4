package booking

import (
	"fmt"
	"strings"

	"maqraa/internal/slots"
)

// ConflictError reports that another party won the race for a slot or for
// every requested slot/day pair. Recoverable: refresh availability and
// choose again.
type ConflictError struct {
	SlotID string
	Days   []int // weekdays lost, empty for seat-mode conflicts
}

func (e *ConflictError) Error() string {
	if len(e.Days) == 0 {
		return fmt.Sprintf("slot %s already booked", e.SlotID)
	}
	names := make([]string, 0, len(e.Days))
	for _, d := range e.Days {
		names = append(names, slots.WeekdayName(d))
	}
	return fmt.Sprintf("slot %s already booked on %s", e.SlotID, strings.Join(names, ", "))
}

// ValidationError reports inconsistent caller input: zero weekdays, an
// invalid weekday value, an unknown slot id, or a selection that does not
// match its required count. Not recoverable by retry; the input must be
// corrected.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps a transient store failure (network, I/O). Recoverable
// by retry.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IncompleteSelectionError blocks step advancement while the day selection
// is short of its required count.
type IncompleteSelectionError struct {
	Have int
	Want int
}

func (e *IncompleteSelectionError) Error() string {
	return fmt.Sprintf("selected %d of %d required days", e.Have, e.Want)
}
