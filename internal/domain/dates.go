package domain

import "time"

// Transaction dates carry no time-of-day component. Everything below
// normalizes to midnight UTC so date comparisons are exact.

// ToDate truncates t to midnight UTC.
func ToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a midnight-UTC date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return ToDate(a).Equal(ToDate(b))
}

// BeforeDay reports whether a falls on an earlier calendar day than b.
func BeforeDay(a, b time.Time) bool {
	return ToDate(a).Before(ToDate(b))
}

// AfterDay reports whether a falls on a later calendar day than b.
func AfterDay(a, b time.Time) bool {
	return ToDate(a).After(ToDate(b))
}

// OnOrBeforeDay reports a <= b at day granularity.
func OnOrBeforeDay(a, b time.Time) bool {
	return !AfterDay(a, b)
}

// OnOrAfterDay reports a >= b at day granularity.
func OnOrAfterDay(a, b time.Time) bool {
	return !BeforeDay(a, b)
}

// DaysBetween returns the number of whole days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(ToDate(b).Sub(ToDate(a)).Hours() / 24)
}
