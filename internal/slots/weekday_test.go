package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekday(t *testing.T) {
	t.Run("English", func(t *testing.T) {
		assert.Equal(t, Sunday, ParseWeekday("sunday"))
		assert.Equal(t, Monday, ParseWeekday("Monday"))
		assert.Equal(t, Saturday, ParseWeekday("  SATURDAY  "))
	})

	t.Run("Arabic", func(t *testing.T) {
		assert.Equal(t, Sunday, ParseWeekday("الأحد"))
		assert.Equal(t, Sunday, ParseWeekday("الاحد"))
		assert.Equal(t, Monday, ParseWeekday("الاثنين"))
		assert.Equal(t, Friday, ParseWeekday("الجمعة"))
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Equal(t, InvalidWeekday, ParseWeekday(""))
		assert.Equal(t, InvalidWeekday, ParseWeekday("someday"))
		assert.Equal(t, InvalidWeekday, ParseWeekday("7"))
	})
}

func TestValidWeekday(t *testing.T) {
	for d := Sunday; d <= Saturday; d++ {
		assert.True(t, ValidWeekday(d), "day %d", d)
	}
	assert.False(t, ValidWeekday(InvalidWeekday))
	assert.False(t, ValidWeekday(7))
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "sunday", WeekdayName(Sunday))
	assert.Equal(t, "saturday", WeekdayName(Saturday))
	assert.Equal(t, "", WeekdayName(InvalidWeekday))
	assert.Equal(t, "", WeekdayName(7))
}

func TestAllWeekdays(t *testing.T) {
	days := AllWeekdays()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, days)
}

func TestMeetingAPIDay(t *testing.T) {
	// The meeting scheduler counts 1=Sunday..7=Saturday; the shift happens
	// only at this boundary.
	assert.Equal(t, 1, MeetingAPIDay(Sunday))
	assert.Equal(t, 4, MeetingAPIDay(Wednesday))
	assert.Equal(t, 7, MeetingAPIDay(Saturday))
	assert.Equal(t, InvalidWeekday, MeetingAPIDay(InvalidWeekday))
	assert.Equal(t, InvalidWeekday, MeetingAPIDay(7))

	for d := Sunday; d <= Saturday; d++ {
		assert.Equal(t, d, FromMeetingAPIDay(MeetingAPIDay(d)))
	}
	assert.Equal(t, InvalidWeekday, FromMeetingAPIDay(0))
	assert.Equal(t, InvalidWeekday, FromMeetingAPIDay(8))
}
