package audit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"maqraa/internal/slots"
)

func TestWriteReservations(t *testing.T) {
	catalog := slots.DefaultCatalog()

	var buf bytes.Buffer
	err := WriteReservations(&buf, catalog,
		[]string{"M_0510_0520"},
		map[string][]int{"A_1600_1610": {slots.Monday, slots.Friday}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"morning", "afternoon", "evening"}, f.GetSheetList())

	t.Run("Header", func(t *testing.T) {
		rows, err := f.GetRows("morning")
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, "Slot", rows[0][0])
		assert.Equal(t, "Seat", rows[0][1])
		assert.Equal(t, "sunday", rows[0][2])
		assert.Equal(t, "saturday", rows[0][8])
	})

	t.Run("SeatMarker", func(t *testing.T) {
		cell, err := f.GetCellValue("morning", "B2")
		require.NoError(t, err)
		assert.Equal(t, "booked", cell)

		cell, err = f.GetCellValue("morning", "B3")
		require.NoError(t, err)
		assert.Empty(t, cell)
	})

	t.Run("DayMarkers", func(t *testing.T) {
		rows, err := f.GetRows("afternoon")
		require.NoError(t, err)
		require.Greater(t, len(rows), 1)
		assert.Equal(t, "A_1600_1610", rows[1][0])
		// Columns: slot, seat, then weekdays Sunday..Saturday.
		assert.Equal(t, "booked", rows[1][2+slots.Monday])
		assert.Equal(t, "booked", rows[1][2+slots.Friday])
	})
}

func TestWriteReservations_EmptyState(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReservations(&buf, slots.DefaultCatalog(), nil, nil)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
