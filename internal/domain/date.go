package domain

import "time"

// Day normalizes t to midnight UTC. All run dates, accrual dates and
// daily-volume dates are stored in this form so date equality is exact.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
