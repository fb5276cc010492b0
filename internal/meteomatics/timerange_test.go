package meteomatics

import (
	"testing"
	"time"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s) failed: %v", name, err)
	}
	return loc
}

func TestHourlyRange(t *testing.T) {
	loc := mustLocation(t, "Europe/Zurich")
	// 2026-07-14 09:37:12 local (CEST, +02:00)
	now := time.Date(2026, 7, 14, 9, 37, 12, 0, loc)

	got := HourlyRange(now, loc)
	want := "2026-07-14T09:00:00+02:00--2026-07-15T09:00:00+02:00:PT1H"
	if got != want {
		t.Errorf("HourlyRange = %q, want %q", got, want)
	}
}

func TestHourlyRangeConvertsToConfiguredZone(t *testing.T) {
	loc := mustLocation(t, "Europe/Zurich")
	// Same instant expressed in UTC; the window must come out in local time.
	now := time.Date(2026, 7, 14, 7, 37, 12, 0, time.UTC)

	got := HourlyRange(now, loc)
	want := "2026-07-14T09:00:00+02:00--2026-07-15T09:00:00+02:00:PT1H"
	if got != want {
		t.Errorf("HourlyRange = %q, want %q", got, want)
	}
}

func TestDailyRange(t *testing.T) {
	loc := mustLocation(t, "Europe/Zurich")
	now := time.Date(2026, 1, 5, 22, 15, 0, 0, loc) // CET, +01:00

	got := DailyRange(now, loc)
	want := "2026-01-05T00:00:00+01:00--2026-01-15T00:00:00+01:00:P1D"
	if got != want {
		t.Errorf("DailyRange = %q, want %q", got, want)
	}
}

func TestDailyRangeUTC(t *testing.T) {
	now := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)

	got := DailyRange(now, time.UTC)
	want := "2026-03-01T00:00:00+00:00--2026-03-11T00:00:00+00:00:P1D"
	if got != want {
		t.Errorf("DailyRange = %q, want %q", got, want)
	}
}

func TestTruncateHour(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	in := time.Date(2026, 8, 24, 13, 59, 59, 123456, loc)

	got := TruncateHour(in)
	want := time.Date(2026, 8, 24, 13, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("TruncateHour = %v, want %v", got, want)
	}
}

func TestTruncateDay(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	in := time.Date(2026, 8, 24, 13, 59, 59, 0, loc)

	got := TruncateDay(in)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("TruncateDay = %v, want %v", got, want)
	}
}
