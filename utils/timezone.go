package utils

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Offsets follow JavaScript's Date.getTimezoneOffset convention: the number
// of minutes to add to a local time to reach UTC, so UTC+02:00 is -120.
// ±840 covers UTC-14 through UTC+14.
const MaxOffsetMinutes = 840

var ErrBadOffset = errors.New("tz_offset_minutes out of range")

// DayWindow converts a local calendar date plus a UTC offset into the
// half-open UTC interval [start, end) covering the 24 local hours of that
// date. The offset is a fixed integer for the whole day; no DST modeling.
func DayWindow(date string, tzOffsetMinutes int) (time.Time, time.Time, error) {
	if tzOffsetMinutes < -MaxOffsetMinutes || tzOffsetMinutes > MaxOffsetMinutes {
		return time.Time{}, time.Time{}, ErrBadOffset
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	start := d.Add(time.Duration(tzOffsetMinutes) * time.Minute)
	return start, start.Add(24 * time.Hour), nil
}

// LocalDay is the inverse mapping: the local calendar day a UTC instant falls
// on under the given offset. For any t and offset, t lies inside the window
// DayWindow(LocalDay(t, off), off) returns.
func LocalDay(t time.Time, tzOffsetMinutes int) string {
	return t.UTC().Add(-time.Duration(tzOffsetMinutes) * time.Minute).Format(dateLayout)
}

// ParseCapturedAt parses a client capture timestamp. RFC 3339 is required, so
// the value always carries explicit offset information; the UTC instant is
// returned for storage while callers keep the verbatim string for display.
func ParseCapturedAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid captured_at %q: RFC3339 with offset required", s)
	}
	return t.UTC(), nil
}
