package expenses

import (
	"errors"
	"time"
)

// Frequency enumerates supported recurrence intervals.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
)

// ErrInvalidFrequency indicates a frequency outside the enumerated set.
// Input validation rejects these before the engine runs; the sentinel exists
// for callers that bypass the HTTP boundary.
var ErrInvalidFrequency = errors.New("invalid frequency")

// ValidFrequency reports whether f is one of the enumerated intervals.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}
	return false
}

// NextDueDate returns anchor advanced by one frequency unit. Month-based
// intervals preserve the day of month, clamping to the last day when the
// target month is shorter; Jan 31 + monthly lands on Feb 28 (29 in leap
// years), never in March. The result is always strictly after the anchor.
func NextDueDate(anchor time.Time, freq Frequency) (time.Time, error) {
	switch freq {
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, 7), nil
	case FrequencyMonthly:
		return addMonthsClamped(anchor, 1), nil
	case FrequencyQuarterly:
		return addMonthsClamped(anchor, 3), nil
	case FrequencyAnnually:
		return addMonthsClamped(anchor, 12), nil
	}
	return time.Time{}, ErrInvalidFrequency
}

// Reschedule recomputes the next due date from the same anchor under a new
// frequency. It never compounds from a previously computed due date.
func Reschedule(anchor time.Time, newFreq Frequency) (time.Time, error) {
	return NextDueDate(anchor, newFreq)
}

// addMonthsClamped adds months with day-of-month preservation. Plain
// time.AddDate normalizes overflow (Jan 31 + 1 month = Mar 2/3), which is
// not calendar-month addition, so the target month length is checked first.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}
