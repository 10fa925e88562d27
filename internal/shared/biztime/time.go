// Package biztime provides time utilities for billing calculations.
// All storage and transport use UTC; the usage ledger is keyed by the
// UTC calendar month in "YYYY-MM" form.
package biztime

import "time"

const monthLayout = "2006-01"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// MonthKey returns the ledger month key ("YYYY-MM") for the given time.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// CurrentMonth returns the ledger month key for the current time.
func CurrentMonth() string {
	return MonthKey(NowUTC())
}

// ValidMonthKey reports whether s is a well-formed "YYYY-MM" month key.
func ValidMonthKey(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// ToMillis converts a time to epoch milliseconds, the unit used for the
// plan-valid-until column.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds back to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
