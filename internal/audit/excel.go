// Package audit exports the reservation overview for the school's admins.
package audit

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"maqraa/internal/slots"
)

// WriteReservations writes one sheet per time block: a row per slot with
// the seat state and a column per weekday showing day bookings.
func WriteReservations(w io.Writer, catalog *slots.Catalog, seatSlots []string, dayBookings map[string][]int) error {
	f := excelize.NewFile()
	defer f.Close()

	seatSet := make(map[string]struct{}, len(seatSlots))
	for _, id := range seatSlots {
		seatSet[id] = struct{}{}
	}
	daySet := make(map[string]map[int]struct{}, len(dayBookings))
	for id, days := range dayBookings {
		m := make(map[int]struct{}, len(days))
		for _, d := range days {
			m[d] = struct{}{}
		}
		daySet[id] = m
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, block := range catalog.Blocks() {
		sheet := sheetName(block.ID)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		header := []any{"Slot", "Seat"}
		for _, d := range slots.AllWeekdays() {
			header = append(header, slots.WeekdayName(d))
		}
		if err := writeRow(f, sheet, 1, header); err != nil {
			return err
		}
		endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, boldStyle)

		for rowIdx, slot := range block.Slots {
			row := []any{slot.ID, seatCell(seatSet, slot.ID)}
			for _, d := range slots.AllWeekdays() {
				row = append(row, dayCell(daySet, slot.ID, d))
			}
			if err := writeRow(f, sheet, rowIdx+2, row); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func seatCell(seats map[string]struct{}, slotID string) string {
	if _, ok := seats[slotID]; ok {
		return "booked"
	}
	return ""
}

func dayCell(days map[string]map[int]struct{}, slotID string, weekday int) string {
	if m, ok := days[slotID]; ok {
		if _, booked := m[weekday]; booked {
			return "booked"
		}
	}
	return ""
}

func sheetName(blockID string) string {
	// Excel limits sheet names to 31 characters.
	if len(blockID) > 31 {
		return blockID[:31]
	}
	return blockID
}
