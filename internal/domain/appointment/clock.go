package appointment

import (
	"fmt"
	"time"
)

// ParseClock converts a zero-padded "HH:MM" label into minutes since
// midnight.
func ParseClock(label string) (int, error) {
	if len(label) != 5 || label[2] != ':' {
		return 0, ErrInvalidClock
	}
	var h, m int
	if _, err := fmt.Sscanf(label, "%02d:%02d", &h, &m); err != nil {
		return 0, ErrInvalidClock
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" label.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// BusinessHours bounds the bookable day. All fields are minutes: Start and
// End since midnight (both inclusive), Step the slot granularity.
type BusinessHours struct {
	Start int
	End   int
	Step  int
}

// DefaultBusinessHours is the clinic window: 08:00–18:00 in 30-minute slots.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{Start: 8 * 60, End: 18 * 60, Step: 30}
}

// Contains reports whether the clock minute lies within the bookable window.
// The bound check is all creation enforces; slot-grid alignment only matters
// for availability enumeration.
func (h BusinessHours) Contains(minutes int) bool {
	return minutes >= h.Start && minutes <= h.End
}

// Slots enumerates every candidate slot label from Start to End inclusive.
// The default window yields 21 labels (08:00, 08:30, …, 18:00). Returns nil
// when the window is empty or the step is non-positive.
func (h BusinessHours) Slots() []string {
	if h.Step <= 0 || h.End < h.Start {
		return nil
	}
	slots := make([]string, 0, (h.End-h.Start)/h.Step+1)
	for t := h.Start; t <= h.End; t += h.Step {
		slots = append(slots, FormatClock(t))
	}
	return slots
}

// DateOnly truncates t to its calendar day in local time. Appointment dates
// are stored without a time component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsWeekday reports whether d falls on Monday through Friday.
func IsWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
