package domain

import "time"

// DateLayout is the wire format for calendar dates (checkpoint and transaction dates)
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
// All date comparisons in the domain operate on DateOnly values.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from "from" to "to"
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// ParseDate accepts either a plain date (2006-01-02) or an RFC3339 timestamp
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}
