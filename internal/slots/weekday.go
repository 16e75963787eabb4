package slots

import "strings"

// Weekdays use the 0=Sunday..6=Saturday encoding throughout the booking
// core. The meeting-scheduler API counts 1=Sunday..7=Saturday; that
// encoding is translated at the boundary only (MeetingAPIDay) and never
// mixed into core state.
const (
	Sunday    = 0
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6

	// InvalidWeekday is the sentinel for day names outside the fixed
	// mapping. It must never be treated as bookable.
	InvalidWeekday = -1
)

var weekdayNames = map[string]int{
	"sunday":    Sunday,
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,

	// Arabic day names as they appear in the application forms.
	"الأحد":    Sunday,
	"الاحد":    Sunday,
	"الإثنين":  Monday,
	"الاثنين":  Monday,
	"الثلاثاء": Tuesday,
	"الأربعاء": Wednesday,
	"الاربعاء": Wednesday,
	"الخميس":   Thursday,
	"الجمعة":   Friday,
	"السبت":    Saturday,
}

var weekdayLabels = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// ParseWeekday canonicalizes a free-text day name. Unknown names map to
// InvalidWeekday.
func ParseWeekday(name string) int {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return InvalidWeekday
	}
	return d
}

// ValidWeekday reports whether d is in the bookable 0..6 range.
func ValidWeekday(d int) bool {
	return d >= Sunday && d <= Saturday
}

// WeekdayName returns the canonical English name, or "" for invalid values.
func WeekdayName(d int) string {
	if !ValidWeekday(d) {
		return ""
	}
	return weekdayLabels[d]
}

// AllWeekdays returns all seven weekdays in order, Sunday first.
func AllWeekdays() []int {
	return []int{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// MeetingAPIDay converts a core weekday to the meeting-scheduler encoding
// (1=Sunday..7=Saturday). Invalid values return InvalidWeekday unchanged.
func MeetingAPIDay(d int) int {
	if !ValidWeekday(d) {
		return InvalidWeekday
	}
	return d + 1
}

// FromMeetingAPIDay converts a meeting-scheduler day back to the core
// encoding, returning InvalidWeekday for anything outside 1..7.
func FromMeetingAPIDay(d int) int {
	if d < 1 || d > 7 {
		return InvalidWeekday
	}
	return d - 1
}
