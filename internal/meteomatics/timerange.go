package meteomatics

import (
	"fmt"
	"time"
)

// Fetch horizons. Hourly requests span 24 hours from the current hour; daily
// requests span 10 days from local midnight.
const (
	HourlyHours = 24
	DailyDays   = 10
)

// ISO8601 duration steps accepted by the provider's time-range syntax.
const (
	StepHourly = "PT1H"
	StepDaily  = "P1D"
)

// timeFormat serializes instants with second precision and an explicit offset,
// as the provider's URL time-range syntax requires.
const timeFormat = "2006-01-02T15:04:05-07:00"

// HourlyRange builds the provider time-range string for an hourly fetch:
// the current hour (minutes and seconds truncated) in the installation's
// time zone, spanning HourlyHours forward with a one-hour step.
func HourlyRange(now time.Time, loc *time.Location) string {
	start := TruncateHour(now.In(loc))
	end := start.Add(HourlyHours * time.Hour)
	return FormatRange(start, end, StepHourly)
}

// DailyRange builds the provider time-range string for a daily fetch:
// local midnight spanning DailyDays forward with a one-day step.
func DailyRange(now time.Time, loc *time.Location) string {
	start := TruncateDay(now.In(loc))
	end := start.AddDate(0, 0, DailyDays)
	return FormatRange(start, end, StepDaily)
}

// FormatRange serializes a (start, end, step) triple as the provider expects:
// "<start>--<end>:<step>" with ISO8601 timestamps and duration.
func FormatRange(start, end time.Time, step string) string {
	return fmt.Sprintf("%s--%s:%s", start.Format(timeFormat), end.Format(timeFormat), step)
}

// TruncateHour zeroes minutes, seconds and sub-second precision, keeping the
// wall-clock hour in t's location.
func TruncateHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// TruncateDay returns midnight of t's calendar day in t's location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
