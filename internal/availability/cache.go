// Package availability maintains the client-side projection of the
// reservation store used by the booking forms.
package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"maqraa/internal/metrics"
	"maqraa/internal/store"
)

type dayKey struct {
	slotID  string
	weekday int
}

// Cache is a disposable, rebuildable read replica of the availability
// store: loaded once per booking screen, then patched incrementally from
// the insert feed. Reservations are append-only in this flow, so the merge
// is a set union keyed by slot id (seats) or (slot id, weekday) bookings;
// duplicate and reordered deliveries are harmless.
type Cache struct {
	reader store.Reader
	logger *zerolog.Logger

	mu     sync.RWMutex
	seats  map[string]struct{}
	days   map[dayKey]struct{}
	closed bool
	cancel func()
}

// NewCache builds an empty cache over the store's read side.
func NewCache(reader store.Reader, logger *zerolog.Logger) *Cache {
	return &Cache{
		reader: reader,
		logger: logger,
		seats:  make(map[string]struct{}),
		days:   make(map[dayKey]struct{}),
	}
}

// Start subscribes the cache to the insert feed. It must be paired with
// Close; no event is applied after Close returns.
func (c *Cache) Start(feed *store.Feed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.cancel != nil {
		return
	}
	c.cancel = feed.Subscribe(func(ev store.InsertEvent) {
		metrics.IncFeedApplied()
		c.ApplyInsert(ev)
	})
}

// Close unsubscribes from the feed and discards any I/O still in flight:
// a Load resolving after Close must not resurrect state for a screen that
// no longer exists.
func (c *Cache) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.closed = true
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Load fetches the current booked set from the store and merges it in.
// A failed load is recoverable: the cache keeps its previous state and the
// caller may retry.
func (c *Cache) Load(ctx context.Context) error {
	seats, err := c.reader.SelectSeats(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("availability load failed, keeping previous state")
		return fmt.Errorf("load seats: %w", err)
	}
	bookings, err := c.reader.SelectDayBookings(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("availability load failed, keeping previous state")
		return fmt.Errorf("load day bookings: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	for _, s := range seats {
		if s.Booked {
			c.seats[s.TimeSlotID] = struct{}{}
		}
	}
	for _, b := range bookings {
		if b.Booked {
			c.days[dayKey{b.TimeSlotID, b.Weekday}] = struct{}{}
		}
	}
	return nil
}

// ApplyInsert idempotently merges a newly observed reservation. The same
// record may arrive twice (initial load racing the live feed); the second
// application is a no-op.
func (c *Cache) ApplyInsert(ev store.InsertEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	switch ev.Kind {
	case store.KindSeat:
		if ev.Seat != nil && ev.Seat.Booked {
			c.seats[ev.Seat.TimeSlotID] = struct{}{}
		}
	case store.KindDay:
		if ev.Day != nil && ev.Day.Booked {
			c.days[dayKey{ev.Day.TimeSlotID, ev.Day.Weekday}] = struct{}{}
		}
	}
}

// IsSlotGloballyBooked reports whether a seat reservation exists for the
// slot.
func (c *Cache) IsSlotGloballyBooked(slotID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.seats[slotID]
	return ok
}

// IsSlotBookedOnDay reports whether a day booking exists for the
// slot/weekday pair.
func (c *Cache) IsSlotBookedOnDay(slotID string, weekday int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.days[dayKey{slotID, weekday}]
	return ok
}

// BookedDays returns the weekdays on which the slot is booked, in
// ascending order.
func (c *Cache) BookedDays(slotID string) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var days []int
	for d := 0; d <= 6; d++ {
		if _, ok := c.days[dayKey{slotID, d}]; ok {
			days = append(days, d)
		}
	}
	return days
}

// Snapshot returns the booked seat slot ids and slot/weekday pairs.
func (c *Cache) Snapshot() (seatSlots []string, dayBookings map[string][]int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id := range c.seats {
		seatSlots = append(seatSlots, id)
	}
	dayBookings = make(map[string][]int)
	for k := range c.days {
		dayBookings[k.slotID] = append(dayBookings[k.slotID], k.weekday)
	}

	sort.Strings(seatSlots)
	for _, days := range dayBookings {
		sort.Ints(days)
	}
	return seatSlots, dayBookings
}
