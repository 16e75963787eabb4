package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeed_PublishSubscribe(t *testing.T) {
	feed := NewFeed()

	var got []InsertEvent
	cancel := feed.Subscribe(func(ev InsertEvent) {
		got = append(got, ev)
	})
	assert.Equal(t, 1, feed.SubscriberCount())

	feed.Publish(InsertEvent{Kind: KindSeat, Seat: &SeatReservation{TimeSlotID: "M_0510_0520"}})
	feed.Publish(InsertEvent{Kind: KindDay, Day: &DayBooking{TimeSlotID: "A_1600_1610", Weekday: 2}})

	assert.Len(t, got, 2)
	assert.Equal(t, KindSeat, got[0].Kind)
	assert.Equal(t, "M_0510_0520", got[0].Seat.TimeSlotID)
	assert.Equal(t, KindDay, got[1].Kind)
	assert.Equal(t, 2, got[1].Day.Weekday)

	cancel()
	assert.Equal(t, 0, feed.SubscriberCount())

	feed.Publish(InsertEvent{Kind: KindSeat, Seat: &SeatReservation{TimeSlotID: "E_1900_1910"}})
	assert.Len(t, got, 2, "cancelled subscriber must not receive events")
}

func TestFeed_MultipleSubscribers(t *testing.T) {
	feed := NewFeed()

	var a, b int
	cancelA := feed.Subscribe(func(InsertEvent) { a++ })
	feed.Subscribe(func(InsertEvent) { b++ })

	feed.Publish(InsertEvent{Kind: KindSeat, Seat: &SeatReservation{TimeSlotID: "M_0510_0520"}})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	cancelA()
	cancelA() // double cancel is harmless

	feed.Publish(InsertEvent{Kind: KindSeat, Seat: &SeatReservation{TimeSlotID: "M_0520_0530"}})
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
