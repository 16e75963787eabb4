package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// DB is the SQLite-backed availability store. UNIQUE constraints are the
// conflict arbiter: the database accepts writes in the order received and
// rejects conflicting ones, which is the only ordering guarantee clients
// get.
type DB struct {
	*sql.DB
	feed *Feed
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{DB: db, feed: NewFeed()}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Global seat reservations: one per slot, weekday-independent.
		`CREATE TABLE IF NOT EXISTS seats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time_slot_id TEXT UNIQUE NOT NULL,
			seat_label TEXT NOT NULL DEFAULT '',
			booked BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Day-scoped bookings for recurring weekly lessons.
		`CREATE TABLE IF NOT EXISTS day_bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time_slot_id TEXT NOT NULL,
			weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
			booked BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (time_slot_id, weekday)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_day_bookings_slot ON day_bookings(time_slot_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// Feed returns the insert notification feed for this store.
func (db *DB) Feed() *Feed {
	return db.feed
}

// SelectSeats returns all booked seat reservations.
func (db *DB) SelectSeats(ctx context.Context) ([]SeatReservation, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT time_slot_id, seat_label, booked, created_at FROM seats WHERE booked = 1",
	)
	if err != nil {
		return nil, fmt.Errorf("select seats: %w", err)
	}
	defer rows.Close()

	var seats []SeatReservation
	for rows.Next() {
		var r SeatReservation
		if err := rows.Scan(&r.TimeSlotID, &r.SeatLabel, &r.Booked, &r.CreatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, r)
	}
	return seats, rows.Err()
}

// SelectDayBookings returns all booked day-scoped reservations.
func (db *DB) SelectDayBookings(ctx context.Context) ([]DayBooking, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT time_slot_id, weekday, booked, created_at FROM day_bookings WHERE booked = 1",
	)
	if err != nil {
		return nil, fmt.Errorf("select day bookings: %w", err)
	}
	defer rows.Close()

	var bookings []DayBooking
	for rows.Next() {
		var b DayBooking
		if err := rows.Scan(&b.TimeSlotID, &b.Weekday, &b.Booked, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// InsertSeat claims a slot globally. Returns ErrConflict if another party
// already holds the slot.
func (db *DB) InsertSeat(ctx context.Context, r SeatReservation) error {
	now := time.Now()
	_, err := db.ExecContext(ctx,
		"INSERT INTO seats (time_slot_id, seat_label, booked, created_at) VALUES (?, ?, 1, ?)",
		r.TimeSlotID, r.SeatLabel, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("seat %s: %w", r.TimeSlotID, ErrConflict)
		}
		return fmt.Errorf("insert seat: %w", err)
	}

	r.Booked = true
	r.CreatedAt = now
	db.feed.Publish(InsertEvent{Kind: KindSeat, Seat: &r})
	return nil
}

// InsertDayBooking claims a slot for one weekday. Returns ErrConflict if
// the (slot, weekday) pair is already taken.
func (db *DB) InsertDayBooking(ctx context.Context, b DayBooking) error {
	now := time.Now()
	_, err := db.ExecContext(ctx,
		"INSERT INTO day_bookings (time_slot_id, weekday, booked, created_at) VALUES (?, ?, 1, ?)",
		b.TimeSlotID, b.Weekday, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slot %s weekday %d: %w", b.TimeSlotID, b.Weekday, ErrConflict)
		}
		return fmt.Errorf("insert day booking: %w", err)
	}

	b.Booked = true
	b.CreatedAt = now
	db.feed.Publish(InsertEvent{Kind: KindDay, Day: &b})
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
