package utils

import (
	"testing"
	"time"
)

func TestDayWindow(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		offset    int
		wantStart string
		wantEnd   string
	}{
		{"utc", "2025-01-15", 0, "2025-01-15T00:00:00Z", "2025-01-16T00:00:00Z"},
		{"utc plus two", "2025-01-15", -120, "2025-01-14T22:00:00Z", "2025-01-15T22:00:00Z"},
		{"utc minus five", "2025-01-15", 300, "2025-01-15T05:00:00Z", "2025-01-16T05:00:00Z"},
		{"india half hour", "2025-01-15", -330, "2025-01-14T18:30:00Z", "2025-01-15T18:30:00Z"},
		{"nepal quarter hour", "2025-01-15", -345, "2025-01-14T18:15:00Z", "2025-01-15T18:15:00Z"},
		{"marquesas", "2025-01-15", 570, "2025-01-15T09:30:00Z", "2025-01-16T09:30:00Z"},
		{"eastern boundary", "2025-01-15", -840, "2025-01-14T10:00:00Z", "2025-01-15T10:00:00Z"},
		{"western boundary", "2025-01-15", 840, "2025-01-15T14:00:00Z", "2025-01-16T14:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := DayWindow(tt.date, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := start.UTC().Format(time.RFC3339); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.UTC().Format(time.RFC3339); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if end.Sub(start) != 24*time.Hour {
				t.Errorf("window length = %v, want 24h", end.Sub(start))
			}
		})
	}
}

func TestDayWindowHalfOpen(t *testing.T) {
	start, end, err := DayWindow("2025-01-15", -120)
	if err != nil {
		t.Fatal(err)
	}

	// Same membership predicate the ledger query uses:
	// ate_at >= start AND ate_at < end.
	inWindow := func(ts time.Time) bool {
		return !ts.Before(start) && ts.Before(end)
	}

	if !inWindow(start) {
		t.Error("meal recorded exactly at window start must be included")
	}
	if inWindow(end) {
		t.Error("meal recorded exactly at window end must be excluded")
	}
	if !inWindow(end.Add(-time.Second)) {
		t.Error("last second of the local day must be included")
	}
	if inWindow(start.Add(-time.Second)) {
		t.Error("second before local midnight must be excluded")
	}
}

func TestDayWindowRejectsBadInput(t *testing.T) {
	if _, _, err := DayWindow("2025-01-15", -841); err == nil {
		t.Error("offset -841 should be rejected")
	}
	if _, _, err := DayWindow("2025-01-15", 841); err == nil {
		t.Error("offset 841 should be rejected")
	}
	if _, _, err := DayWindow("15-01-2025", 0); err == nil {
		t.Error("non Y-M-D date should be rejected")
	}
	if _, _, err := DayWindow("2025-13-01", 0); err == nil {
		t.Error("month 13 should be rejected")
	}
}

// A meal near midnight UTC moves between calendar days as the viewer's
// offset changes: 23:50Z on Jan 15 is still Jan 15 in UTC but already
// Jan 16 for a viewer at UTC+10 (offset -600).
func TestLocalDayOffsetReassignsDay(t *testing.T) {
	ateAt := time.Date(2025, 1, 15, 23, 50, 0, 0, time.UTC)

	if got := LocalDay(ateAt, 0); got != "2025-01-15" {
		t.Errorf("offset 0: got %s, want 2025-01-15", got)
	}
	if got := LocalDay(ateAt, -600); got != "2025-01-16" {
		t.Errorf("offset -600: got %s, want 2025-01-16", got)
	}

	// Consistency: the instant falls inside the window of whichever day
	// LocalDay assigns it to.
	for _, offset := range []int{0, -600, 300, -345} {
		day := LocalDay(ateAt, offset)
		start, end, err := DayWindow(day, offset)
		if err != nil {
			t.Fatal(err)
		}
		if ateAt.Before(start) || !ateAt.Before(end) {
			t.Errorf("offset %d: %v not inside window [%v, %v)", offset, ateAt, start, end)
		}
	}
}

func TestParseCapturedAt(t *testing.T) {
	got, err := ParseCapturedAt("2025-01-15T12:00:00+02:00")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ParseCapturedAt("2025-01-15 12:00:00"); err == nil {
		t.Error("timestamp without offset should be rejected")
	}
	if _, err := ParseCapturedAt("not-a-time"); err == nil {
		t.Error("garbage should be rejected")
	}
}
