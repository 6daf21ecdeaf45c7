package domain

import (
	"time"
)

// DateLayout is the wire format for calendar dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// TimestampLayout is the wire format for session timestamps, ISO-8601 with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// ParseDate parses a YYYY-MM-DD string. Impossible calendar dates (2024-02-30) are rejected.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, newValidationError("date", "%q must be in YYYY-MM-DD format", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, newValidationError("date", "%q is not a valid calendar date", s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// SessionTimestamp normalizes a session time to UTC with microsecond precision.
func SessionTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
