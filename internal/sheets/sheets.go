// Package sheets mirrors the weekly reservation schedule to a Google
// spreadsheet shared with the teaching staff.
package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"maqraa/internal/slots"
)

// Service writes the schedule grid. One row per slot, one column per
// weekday, seat reservations in a dedicated column.
type Service struct {
	svc           *sheetsv4.Service
	spreadsheetID string
	sheetName     string

	mu       sync.Mutex
	rowCache map[string]int // slot id -> sheet row
}

// NewService authenticates with a service account key file.
func NewService(ctx context.Context, credentialsPath, spreadsheetID, sheetName string) (*Service, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheetsv4.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	svc, err := sheetsv4.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	if sheetName == "" {
		sheetName = "Schedule"
	}
	return &Service{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      make(map[string]int),
	}, nil
}

// ExportSchedule rewrites the schedule grid from the current booked set.
func (s *Service) ExportSchedule(ctx context.Context, catalog *slots.Catalog, seatSlots []string, dayBookings map[string][]int) error {
	seatSet := make(map[string]struct{}, len(seatSlots))
	for _, id := range seatSlots {
		seatSet[id] = struct{}{}
	}

	values := [][]any{headerRow()}
	row := 2
	s.mu.Lock()
	for _, block := range catalog.Blocks() {
		for _, slot := range block.Slots {
			values = append(values, slotRowValues(slot, seatSet, dayBookings[slot.ID]))
			s.rowCache[slot.ID] = row
			row++
		}
	}
	s.mu.Unlock()

	rangeRef := fmt.Sprintf("%s!A1", s.sheetName)
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeRef, &sheetsv4.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update schedule sheet: %w", err)
	}
	return nil
}

func headerRow() []any {
	header := []any{"Slot", "Seat"}
	for _, d := range slots.AllWeekdays() {
		header = append(header, slots.WeekdayName(d))
	}
	return header
}

func slotRowValues(slot slots.TimeSlot, seats map[string]struct{}, bookedDays []int) []any {
	daySet := make(map[int]struct{}, len(bookedDays))
	for _, d := range bookedDays {
		daySet[d] = struct{}{}
	}

	seat := ""
	if _, ok := seats[slot.ID]; ok {
		seat = "booked"
	}

	row := []any{slot.ID, seat}
	for _, d := range slots.AllWeekdays() {
		if _, ok := daySet[d]; ok {
			row = append(row, "booked")
		} else {
			row = append(row, "")
		}
	}
	return row
}

// RowFor returns the cached sheet row for a slot id from the last export.
func (s *Service) RowFor(slotID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rowCache[slotID]
	return row, ok
}

// ClearCache drops the row cache, forcing the next export to rebuild it.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache = make(map[string]int)
}
