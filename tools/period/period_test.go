package period_test

import (
	"testing"
	"time"

	"github.com/meterwatch/meter-reading-api/tools/period"
)

func TestMonthWindow_MidMonth(t *testing.T) {
	ts := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	start, end := period.MonthWindow(ts)

	expectedStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expectedEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	if !start.Equal(expectedStart) {
		t.Errorf("Expected start %v, got %v", expectedStart, start)
	}
	if !end.Equal(expectedEnd) {
		t.Errorf("Expected end %v, got %v", expectedEnd, end)
	}
}

func TestMonthWindow_DecemberRollsIntoNextYear(t *testing.T) {
	ts := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	start, end := period.MonthWindow(ts)

	expectedStart := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	expectedEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if !start.Equal(expectedStart) {
		t.Errorf("Expected start %v, got %v", expectedStart, start)
	}
	if !end.Equal(expectedEnd) {
		t.Errorf("Expected end %v, got %v", expectedEnd, end)
	}
}

func TestMonthWindow_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	ts := time.Date(2024, 6, 15, 10, 0, 0, 0, loc)

	start, _ := period.MonthWindow(ts)

	if start.Location() != loc {
		t.Errorf("Expected location %v, got %v", loc, start.Location())
	}
}

func TestContains_StartInclusive(t *testing.T) {
	start, end := period.MonthWindow(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	if !period.Contains(start, start, end) {
		t.Error("Expected start of window to be contained")
	}
}

func TestContains_EndExclusive(t *testing.T) {
	start, end := period.MonthWindow(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	if period.Contains(end, start, end) {
		t.Error("Expected end of window to be excluded")
	}
}

func TestContains_LastInstantOfMonth(t *testing.T) {
	start, end := period.MonthWindow(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	lastInstant := time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)

	if !period.Contains(lastInstant, start, end) {
		t.Error("Expected last instant of the month to be contained")
	}
}
