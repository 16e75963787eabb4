// Package store persists reservation records and publishes insert
// notifications to interested caches.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrConflict is returned when an insert loses the race for a slot or a
// slot/day pair to another party.
var ErrConflict = errors.New("reservation conflict")

// SeatReservation is a global, non-day-scoped claim on a slot. Once
// inserted, the slot is unavailable to everyone regardless of weekday.
// TimeSlotID is the uniqueness key.
type SeatReservation struct {
	TimeSlotID string    `json:"time_slot_id"`
	SeatLabel  string    `json:"seat_label"`
	Booked     bool      `json:"booked"`
	CreatedAt  time.Time `json:"created_at"`
}

// DayBooking is a claim on a slot for one specific recurring weekday.
// The same slot carries independent rows for different weekdays; the pair
// (TimeSlotID, Weekday) is the uniqueness key.
type DayBooking struct {
	TimeSlotID string    `json:"time_slot_id"`
	Weekday    int       `json:"weekday"`
	Booked     bool      `json:"booked"`
	CreatedAt  time.Time `json:"created_at"`
}

// Kind identifies the record kind carried by an insert event.
type Kind string

const (
	KindSeat Kind = "seat"
	KindDay  Kind = "day"
)

// InsertEvent is a change-feed notification for a newly inserted
// reservation. Exactly one of Seat/Day is set, matching Kind. Delivery is
// at-least-once and not ordered relative to a full select; consumers must
// merge idempotently.
type InsertEvent struct {
	Kind Kind             `json:"kind"`
	Seat *SeatReservation `json:"seat,omitempty"`
	Day  *DayBooking      `json:"day,omitempty"`
}

// Reader is the read side consumed by the availability cache. Selects are
// filtered to booked records only.
type Reader interface {
	SelectSeats(ctx context.Context) ([]SeatReservation, error)
	SelectDayBookings(ctx context.Context) ([]DayBooking, error)
}

// Writer is the write side consumed by the booking submitter. Inserts
// return ErrConflict when another party already holds the uniqueness key;
// any other error is a transient store failure.
type Writer interface {
	InsertSeat(ctx context.Context, r SeatReservation) error
	InsertDayBooking(ctx context.Context, b DayBooking) error
}

// Store is the full availability store surface: reads, conflict-checked
// writes and the insert notification feed.
type Store interface {
	Reader
	Writer
	Feed() *Feed
}
