package availability

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqraa/internal/store"
)

type stubReader struct {
	seats    []store.SeatReservation
	bookings []store.DayBooking
	err      error
}

func (r *stubReader) SelectSeats(context.Context) ([]store.SeatReservation, error) {
	return r.seats, r.err
}

func (r *stubReader) SelectDayBookings(context.Context) ([]store.DayBooking, error) {
	return r.bookings, r.err
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestCache_Load(t *testing.T) {
	reader := &stubReader{
		seats: []store.SeatReservation{
			{TimeSlotID: "M_0510_0520", Booked: true},
			{TimeSlotID: "M_0520_0530", Booked: false},
		},
		bookings: []store.DayBooking{
			{TimeSlotID: "A_1600_1610", Weekday: 1, Booked: true},
			{TimeSlotID: "A_1600_1610", Weekday: 3, Booked: true},
		},
	}
	cache := NewCache(reader, testLogger())
	require.NoError(t, cache.Load(context.Background()))

	assert.True(t, cache.IsSlotGloballyBooked("M_0510_0520"))
	assert.False(t, cache.IsSlotGloballyBooked("M_0520_0530"), "unbooked rows are skipped")
	assert.True(t, cache.IsSlotBookedOnDay("A_1600_1610", 1))
	assert.False(t, cache.IsSlotBookedOnDay("A_1600_1610", 2))
	assert.Equal(t, []int{1, 3}, cache.BookedDays("A_1600_1610"))
}

func TestCache_LoadErrorKeepsState(t *testing.T) {
	reader := &stubReader{}
	cache := NewCache(reader, testLogger())

	cache.ApplyInsert(store.InsertEvent{
		Kind: store.KindSeat,
		Seat: &store.SeatReservation{TimeSlotID: "M_0510_0520", Booked: true},
	})

	reader.err = errors.New("db gone")
	err := cache.Load(context.Background())
	require.Error(t, err)
	assert.True(t, cache.IsSlotGloballyBooked("M_0510_0520"), "failed load must not wipe state")
}

func TestCache_ApplyInsertIdempotent(t *testing.T) {
	cache := NewCache(&stubReader{}, testLogger())

	ev := store.InsertEvent{
		Kind: store.KindDay,
		Day:  &store.DayBooking{TimeSlotID: "E_1900_1910", Weekday: 5, Booked: true},
	}
	cache.ApplyInsert(ev)
	cache.ApplyInsert(ev)
	cache.ApplyInsert(ev)

	assert.Equal(t, []int{5}, cache.BookedDays("E_1900_1910"))
}

func TestCache_DayScoping(t *testing.T) {
	// A day booking blocks only its own weekday; a seat reservation blocks
	// the slot regardless of weekday.
	cache := NewCache(&stubReader{}, testLogger())

	cache.ApplyInsert(store.InsertEvent{
		Kind: store.KindDay,
		Day:  &store.DayBooking{TimeSlotID: "M_0510_0520", Weekday: 2, Booked: true},
	})
	assert.False(t, cache.IsSlotGloballyBooked("M_0510_0520"))
	assert.True(t, cache.IsSlotBookedOnDay("M_0510_0520", 2))
	assert.False(t, cache.IsSlotBookedOnDay("M_0510_0520", 4))

	cache.ApplyInsert(store.InsertEvent{
		Kind: store.KindSeat,
		Seat: &store.SeatReservation{TimeSlotID: "M_0510_0520", Booked: true},
	})
	assert.True(t, cache.IsSlotGloballyBooked("M_0510_0520"))
}

func TestCache_CloseDiscardsLateEvents(t *testing.T) {
	feed := store.NewFeed()
	cache := NewCache(&stubReader{}, testLogger())
	cache.Start(feed)
	assert.Equal(t, 1, feed.SubscriberCount())

	cache.Close()
	assert.Equal(t, 0, feed.SubscriberCount())

	cache.ApplyInsert(store.InsertEvent{
		Kind: store.KindSeat,
		Seat: &store.SeatReservation{TimeSlotID: "M_0510_0520", Booked: true},
	})
	assert.False(t, cache.IsSlotGloballyBooked("M_0510_0520"))

	// A load resolving after Close must not resurrect state.
	reader := &stubReader{seats: []store.SeatReservation{{TimeSlotID: "A_1600_1610", Booked: true}}}
	late := NewCache(reader, testLogger())
	late.Close()
	require.NoError(t, late.Load(context.Background()))
	assert.False(t, late.IsSlotGloballyBooked("A_1600_1610"))
}

func TestCache_LiveFeedDelivery(t *testing.T) {
	feed := store.NewFeed()
	cache := NewCache(&stubReader{}, testLogger())
	cache.Start(feed)
	defer cache.Close()

	feed.Publish(store.InsertEvent{
		Kind: store.KindDay,
		Day:  &store.DayBooking{TimeSlotID: "A_1610_1620", Weekday: 0, Booked: true},
	})
	assert.True(t, cache.IsSlotBookedOnDay("A_1610_1620", 0))
}

func TestCache_Snapshot(t *testing.T) {
	cache := NewCache(&stubReader{}, testLogger())

	for _, id := range []string{"M_0520_0530", "M_0510_0520"} {
		cache.ApplyInsert(store.InsertEvent{
			Kind: store.KindSeat,
			Seat: &store.SeatReservation{TimeSlotID: id, Booked: true},
		})
	}
	for _, d := range []int{4, 1} {
		cache.ApplyInsert(store.InsertEvent{
			Kind: store.KindDay,
			Day:  &store.DayBooking{TimeSlotID: "E_1900_1910", Weekday: d, Booked: true},
		})
	}

	seatSlots, dayBookings := cache.Snapshot()
	assert.Equal(t, []string{"M_0510_0520", "M_0520_0530"}, seatSlots)
	assert.Equal(t, map[string][]int{"E_1900_1910": {1, 4}}, dayBookings)
}
