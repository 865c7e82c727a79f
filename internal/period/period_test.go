package period

import (
	"testing"
	"time"
)

func TestMonthKeyRoundTrip(t *testing.T) {
	d := time.Date(2024, time.February, 17, 0, 0, 0, 0, time.UTC)
	key := MonthKey(d)
	if key != "2024-02" {
		t.Fatalf("MonthKey = %q, want 2024-02", key)
	}
	start, err := MonthStart(key)
	if err != nil {
		t.Fatalf("MonthStart: %v", err)
	}
	if start.Day() != 1 || start.Month() != time.February {
		t.Fatalf("MonthStart = %v, want 2024-02-01", start)
	}
}

func TestAddMonthsCrossesYear(t *testing.T) {
	if got := AddMonths("2024-11", 3); got != "2025-02" {
		t.Errorf("AddMonths(2024-11, 3) = %q, want 2025-02", got)
	}
	if got := AddMonths("2024-01", 0); got != "2024-01" {
		t.Errorf("AddMonths(2024-01, 0) = %q, want 2024-01", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := map[string]int{
		"2024-02": 29,
		"2025-02": 28,
		"2025-01": 31,
		"2025-04": 30,
	}
	for key, want := range cases {
		if got := DaysInMonth(key); got != want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", key, got, want)
		}
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2025-01-01 is a Wednesday; its week starts Monday 2024-12-30.
	if got := WeekStart("2025-01-01"); got != "2024-12-30" {
		t.Errorf("WeekStart(2025-01-01) = %q, want 2024-12-30", got)
	}
	// A Monday maps to itself.
	if got := WeekStart("2025-01-06"); got != "2025-01-06" {
		t.Errorf("WeekStart(2025-01-06) = %q, want 2025-01-06", got)
	}
}
