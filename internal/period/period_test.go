package period

import (
	"testing"
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
)

func TestDayKeyUsesUTC(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	// 2025-03-02 06:30 in Manila is still 2025-03-01 in UTC.
	ts := time.Date(2025, 3, 2, 6, 30, 0, 0, manila)
	if got := DayKey(ts); got != "2025-03-01" {
		t.Fatalf("DayKey=%q, want 2025-03-01", got)
	}
}

func TestWeekKeyISOBoundaries(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
		{time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC), "2025-W24"},
	}
	for _, tc := range cases {
		if got := WeekKey(tc.at); got != tc.want {
			t.Fatalf("WeekKey(%s)=%q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestKeysAreMonotonic(t *testing.T) {
	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	prevDay, prevWeek := DayKey(start), WeekKey(start)
	for h := 1; h < 24*30; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		day, week := DayKey(ts), WeekKey(ts)
		if day < prevDay {
			t.Fatalf("day key went backwards at %s: %s < %s", ts, day, prevDay)
		}
		if week < prevWeek {
			t.Fatalf("week key went backwards at %s: %s < %s", ts, week, prevWeek)
		}
		prevDay, prevWeek = day, week
	}
}

func TestPreviousDayKeyAcrossMonth(t *testing.T) {
	ts := time.Date(2025, 3, 1, 0, 5, 0, 0, time.UTC)
	if got := PreviousDayKey(ts); got != "2025-02-28" {
		t.Fatalf("PreviousDayKey=%q, want 2025-02-28", got)
	}
}

func TestKeyByPeriod(t *testing.T) {
	ts := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := Key(model.PeriodDaily, ts); got != "2025-01-08" {
		t.Fatalf("daily key=%q", got)
	}
	if got := Key(model.PeriodWeekly, ts); got != "2025-W02" {
		t.Fatalf("weekly key=%q", got)
	}
}

func TestParseDayKey(t *testing.T) {
	ts, err := ParseDayKey("2025-02-03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if DayKey(ts) != "2025-02-03" {
		t.Fatalf("round trip mismatch: %s", ts)
	}
	if _, err := ParseDayKey("03/02/2025"); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}
