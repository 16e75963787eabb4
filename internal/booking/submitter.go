package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"maqraa/internal/metrics"
	"maqraa/internal/slots"
	"maqraa/internal/store"
)

// Mode selects the reservation semantics of a submission.
type Mode string

const (
	// ModeSeat claims the slot globally, independent of weekday
	// (introductory/one-time sessions).
	ModeSeat Mode = "seat"
	// ModePerDay claims the slot for each selected recurring weekday.
	ModePerDay Mode = "perDay"
)

// Selection is the final choice of a multi-step form, handed to Submit.
type Selection struct {
	SlotID    string
	Weekdays  []int
	Mode      Mode
	SeatLabel string
}

// Confirmation reports the outcome of a submission. For per-day
// submissions BookedDays and ConflictDays together cover the request:
// sibling rows inserted before a conflict stay committed (no rollback),
// and the caller tells the user which days went through.
type Confirmation struct {
	ID           string    `json:"id"`
	SlotID       string    `json:"slot_id"`
	Mode         Mode      `json:"mode"`
	BookedDays   []int     `json:"booked_days,omitempty"`
	ConflictDays []int     `json:"conflict_days,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AvailabilityView is the live cache consulted immediately before writing
// and patched locally after a successful write.
type AvailabilityView interface {
	IsSlotGloballyBooked(slotID string) bool
	IsSlotBookedOnDay(slotID string, weekday int) bool
	ApplyInsert(ev store.InsertEvent)
}

// Notifier is told about completed submissions. Failures are logged, never
// propagated: notification delivery must not fail a booking.
type Notifier interface {
	BookingCreated(ctx context.Context, c Confirmation)
}

// Submitter performs the final reservation write, racing against other
// concurrent users. The store's uniqueness constraints arbitrate; the
// pre-check against the live cache only narrows the race window.
type Submitter struct {
	store    store.Writer
	cache    AvailabilityView
	catalog  *slots.Ref
	notifier Notifier
	logger   *zerolog.Logger
}

// NewSubmitter creates a submitter. notifier may be nil.
func NewSubmitter(st store.Writer, cache AvailabilityView, catalog *slots.Ref, notifier Notifier, logger *zerolog.Logger) *Submitter {
	return &Submitter{
		store:    st,
		cache:    cache,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit validates the selection, re-derives availability from the current
// cache and writes the reservation record(s). Errors are classified as
// *ConflictError (another party won, retry with a different choice),
// *StoreError (transient, retry as-is) or *ValidationError (caller bug or
// inconsistent input).
func (s *Submitter) Submit(ctx context.Context, sel Selection) (*Confirmation, error) {
	if err := s.validate(sel); err != nil {
		return nil, err
	}

	switch sel.Mode {
	case ModeSeat:
		return s.submitSeat(ctx, sel)
	case ModePerDay:
		return s.submitPerDay(ctx, sel)
	default:
		return nil, validationf("unknown mode %q", sel.Mode)
	}
}

func (s *Submitter) validate(sel Selection) error {
	if !s.catalog.Load().HasSlot(sel.SlotID) {
		return validationf("unknown slot id %q", sel.SlotID)
	}
	if sel.Mode == ModePerDay {
		if len(sel.Weekdays) == 0 {
			return validationf("no weekdays selected")
		}
		seen := make(map[int]struct{}, len(sel.Weekdays))
		for _, d := range sel.Weekdays {
			if !slots.ValidWeekday(d) {
				return validationf("invalid weekday %d", d)
			}
			if _, dup := seen[d]; dup {
				return validationf("duplicate weekday %d", d)
			}
			seen[d] = struct{}{}
		}
	}
	return nil
}

func (s *Submitter) submitSeat(ctx context.Context, sel Selection) (*Confirmation, error) {
	if s.cache.IsSlotGloballyBooked(sel.SlotID) {
		metrics.IncBookingConflict(string(ModeSeat))
		return nil, &ConflictError{SlotID: sel.SlotID}
	}

	seat := store.SeatReservation{
		TimeSlotID: sel.SlotID,
		SeatLabel:  sel.SeatLabel,
		Booked:     true,
	}
	if err := s.store.InsertSeat(ctx, seat); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.IncBookingConflict(string(ModeSeat))
			s.logger.Info().Str("slot", sel.SlotID).Msg("seat lost to concurrent booking")
			return nil, &ConflictError{SlotID: sel.SlotID}
		}
		return nil, &StoreError{Err: err}
	}

	// Merge locally so this screen never shows the slot available again,
	// even if the feed notification is still in flight.
	s.cache.ApplyInsert(store.InsertEvent{Kind: store.KindSeat, Seat: &seat})

	conf := s.confirm(sel, nil, nil)
	metrics.IncBookingCreated(string(ModeSeat))
	s.logger.Info().Str("slot", sel.SlotID).Str("confirmation", conf.ID).Msg("seat booked")
	s.notify(ctx, *conf)
	return conf, nil
}

func (s *Submitter) submitPerDay(ctx context.Context, sel Selection) (*Confirmation, error) {
	var booked, conflicted []int

	for _, d := range sel.Weekdays {
		if s.cache.IsSlotBookedOnDay(sel.SlotID, d) {
			conflicted = append(conflicted, d)
			continue
		}

		b := store.DayBooking{
			TimeSlotID: sel.SlotID,
			Weekday:    d,
			Booked:     true,
		}
		if err := s.store.InsertDayBooking(ctx, b); err != nil {
			if errors.Is(err, store.ErrConflict) {
				conflicted = append(conflicted, d)
				continue
			}
			// Transient failure mid-way: days inserted so far stay
			// committed. Surface the store error; the caller refreshes
			// and the user sees which days are already theirs.
			s.logger.Error().Err(err).
				Str("slot", sel.SlotID).
				Ints("booked", booked).
				Msg("per-day insert failed after partial commit")
			return nil, &StoreError{Err: err}
		}

		s.cache.ApplyInsert(store.InsertEvent{Kind: store.KindDay, Day: &b})
		booked = append(booked, d)
	}

	if len(booked) == 0 {
		metrics.IncBookingConflict(string(ModePerDay))
		s.logger.Info().Str("slot", sel.SlotID).Ints("days", conflicted).Msg("all requested days lost to concurrent bookings")
		return nil, &ConflictError{SlotID: sel.SlotID, Days: conflicted}
	}

	conf := s.confirm(sel, booked, conflicted)
	metrics.IncBookingCreated(string(ModePerDay))
	if len(conflicted) > 0 {
		metrics.IncBookingConflict(string(ModePerDay))
		s.logger.Info().
			Str("slot", sel.SlotID).
			Ints("booked", booked).
			Ints("conflicted", conflicted).
			Msg("per-day booking partially committed")
	} else {
		s.logger.Info().Str("slot", sel.SlotID).Ints("days", booked).Str("confirmation", conf.ID).Msg("per-day booking created")
	}
	s.notify(ctx, *conf)
	return conf, nil
}

func (s *Submitter) confirm(sel Selection, booked, conflicted []int) *Confirmation {
	return &Confirmation{
		ID:           uuid.NewString(),
		SlotID:       sel.SlotID,
		Mode:         sel.Mode,
		BookedDays:   booked,
		ConflictDays: conflicted,
		CreatedAt:    time.Now(),
	}
}

func (s *Submitter) notify(ctx context.Context, c Confirmation) {
	if s.notifier == nil {
		return
	}
	// The row is already committed; delivery must not hold up the submit
	// response. Detached from the request context so cancellation on
	// response does not abort retries in flight.
	go s.notifier.BookingCreated(context.WithoutCancel(ctx), c)
}
