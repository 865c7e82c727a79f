// Package period provides canonical string period keys (YYYY-MM and
// YYYY-MM-DD) and the calendar arithmetic shared by the analytics engines.
// String keys compare lexicographically in chronological order, which lets
// the engines clamp and sort without juggling time.Time map keys.
package period

import (
	"fmt"
	"time"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// MonthKey returns the YYYY-MM key for a date.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// DayKey returns the YYYY-MM-DD key for a date.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// MonthStart parses a YYYY-MM key into the first day of that month (UTC).
func MonthStart(key string) (time.Time, error) {
	t, err := time.ParseInLocation(monthLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t, nil
}

// MustMonthStart is MonthStart for keys already validated by the caller.
func MustMonthStart(key string) time.Time {
	t, err := MonthStart(key)
	if err != nil {
		panic(err)
	}
	return t
}

// AddMonths shifts a YYYY-MM key by n months.
func AddMonths(key string, n int) string {
	return MonthKey(MustMonthStart(key).AddDate(0, n, 0))
}

// MonthEnd returns the last day of the month named by a YYYY-MM key.
func MonthEnd(key string) time.Time {
	return MustMonthStart(key).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of calendar days in a YYYY-MM key.
func DaysInMonth(key string) int {
	return MonthEnd(key).Day()
}

// WeekStart maps a YYYY-MM-DD key to the Monday starting its ISO-style week.
func WeekStart(dayKey string) string {
	t, err := time.ParseInLocation(dayLayout, dayKey, time.UTC)
	if err != nil {
		return dayKey
	}
	delta := (int(t.Weekday()) + 6) % 7 // days since Monday
	return DayKey(t.AddDate(0, 0, -delta))
}
