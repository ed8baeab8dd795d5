package period

import "time"

// MonthWindow returns the calendar-month window containing t as a half-open
// range: start is the first instant of t's month, end is the first instant
// of the following month, both in t's location.
func MonthWindow(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// Contains reports whether t falls inside the half-open range [start, end).
func Contains(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
