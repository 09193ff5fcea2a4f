package expenses

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDateWeekly(t *testing.T) {
	next, err := NextDueDate(date(2024, time.March, 4), FrequencyWeekly)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 11), next)
}

func TestNextDueDateMonthlyPreservesDay(t *testing.T) {
	next, err := NextDueDate(date(2024, time.January, 15), FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 15), next)
}

func TestNextDueDateMonthEndClamping(t *testing.T) {
	// Leap year: Jan 31 -> Feb 29, not Mar 2.
	next, err := NextDueDate(date(2024, time.January, 31), FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 29), next)

	// Non-leap: Jan 31 -> Feb 28.
	next, err = NextDueDate(date(2023, time.January, 31), FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2023, time.February, 28), next)

	// May 31 -> Jun 30.
	next, err = NextDueDate(date(2024, time.May, 31), FrequencyMonthly)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.June, 30), next)
}

func TestNextDueDateQuarterly(t *testing.T) {
	next, err := NextDueDate(date(2024, time.November, 30), FrequencyQuarterly)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), next)
}

func TestNextDueDateAnnually(t *testing.T) {
	next, err := NextDueDate(date(2024, time.February, 29), FrequencyAnnually)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), next)
}

func TestNextDueDateMonotonic(t *testing.T) {
	anchors := []time.Time{
		date(2023, time.January, 1),
		date(2023, time.December, 31),
		date(2024, time.February, 29),
		date(2024, time.June, 15),
		date(2025, time.October, 31),
	}
	freqs := []Frequency{FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually}
	for _, anchor := range anchors {
		for _, freq := range freqs {
			next, err := NextDueDate(anchor, freq)
			require.NoError(t, err)
			require.True(t, next.After(anchor), "anchor=%s freq=%s next=%s", anchor, freq, next)
		}
	}
}

func TestNextDueDateRejectsUnknownFrequency(t *testing.T) {
	_, err := NextDueDate(date(2024, time.January, 1), Frequency("fortnightly"))
	require.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestRescheduleUsesAnchorNotPreviousDueDate(t *testing.T) {
	// Switching a monthly template to quarterly on its anchor date moves the
	// due date three months out from that anchor, not from the monthly due date.
	anchor := date(2024, time.January, 15)
	next, err := Reschedule(anchor, FrequencyQuarterly)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.April, 15), next)
}
