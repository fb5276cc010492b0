// Package derive implements the series math layered on top of fetched
// parameter data: point lookups, nearest-neighbor selection, window sums,
// and the daily aggregates substituted when the plan's daily fetch does not
// carry a parameter directly.
//
// All functions treat samples with a nil numeric value as gaps and skip
// them. They never modify the input series.
package derive

import (
	"time"

	"meteopoll/internal/meteomatics"
	"meteopoll/internal/types"
)

// ValueAt returns the numeric value of the sample whose timestamp equals ts
// exactly, or nil when no such sample exists or its value is a gap.
func ValueAt(series types.TimeSeries, ts time.Time) *float64 {
	for _, s := range series {
		if s.Timestamp.Equal(ts) {
			return s.Value
		}
	}
	return nil
}

// TextAt returns the raw text of the sample whose timestamp equals ts
// exactly. Used for parameters whose values are timestamps rather than
// numbers (sunrise, sunset).
func TextAt(series types.TimeSeries, ts time.Time) string {
	for _, s := range series {
		if s.Timestamp.Equal(ts) {
			return s.Text
		}
	}
	return ""
}

// NearestValue returns the numeric value of the sample closest in time to ts,
// skipping gaps. When two samples are equidistant the earlier one wins.
// Returns nil when the series holds no numeric samples.
func NearestValue(series types.TimeSeries, ts time.Time) *float64 {
	var (
		best     *float64
		bestDiff time.Duration
	)
	for _, s := range series {
		if s.Value == nil {
			continue
		}
		diff := absDuration(s.Timestamp.Sub(ts))
		if best == nil || diff < bestDiff {
			best = s.Value
			bestDiff = diff
		}
	}
	return best
}

// SumOverWindow sums the numeric values of all samples in [start, end).
// Gaps are skipped. Returns nil, not zero, when no sample qualifies, so
// callers can distinguish "no data" from "zero accumulation".
func SumOverWindow(series types.TimeSeries, start, end time.Time) *float64 {
	var (
		sum   float64
		found bool
	)
	for _, s := range series {
		if s.Value == nil {
			continue
		}
		if s.Timestamp.Before(start) || !s.Timestamp.Before(end) {
			continue
		}
		sum += *s.Value
		found = true
	}
	if !found {
		return nil
	}
	return &sum
}

// InferDailyCondition picks, among the hourly weather symbols falling within
// [dayStart, dayStart+24h), the one closest to local noon and maps it to a
// condition. Ties go to the first-encountered sample; symbols that do not map
// (unknown codes) are ignored. Reports false when no sample in the window
// yields a mappable symbol.
func InferDailyCondition(symbols types.TimeSeries, dayStart time.Time) (types.Condition, bool) {
	dayEnd := dayStart.Add(24 * time.Hour)
	noon := dayStart.Add(12 * time.Hour)

	var (
		best     types.Condition
		bestDiff time.Duration
		found    bool
	)
	for _, s := range symbols {
		if s.Value == nil {
			continue
		}
		if s.Timestamp.Before(dayStart) || !s.Timestamp.Before(dayEnd) {
			continue
		}
		cond, ok := meteomatics.MapSymbol(int(*s.Value))
		if !ok {
			continue
		}
		diff := absDuration(s.Timestamp.Sub(noon))
		if !found || diff < bestDiff {
			best = cond
			bestDiff = diff
			found = true
		}
	}
	return best, found
}

// HighLow carries a derived daily temperature extreme pair. Either side may
// be nil independently, though in practice both are set or neither.
type HighLow struct {
	High *float64
	Low  *float64
}

// DailyHighLow groups the hourly temperature series by calendar day in loc
// and returns the min and max per day, keyed by local midnight. Days with no
// numeric samples are absent from the result.
func DailyHighLow(temps types.TimeSeries, loc *time.Location) map[time.Time]HighLow {
	result := make(map[time.Time]HighLow)
	for _, s := range temps {
		if s.Value == nil {
			continue
		}
		local := s.Timestamp.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

		hl, ok := result[day]
		if !ok {
			v := *s.Value
			high, low := v, v
			result[day] = HighLow{High: &high, Low: &low}
			continue
		}
		if *s.Value > *hl.High {
			*hl.High = *s.Value
		}
		if *s.Value < *hl.Low {
			*hl.Low = *s.Value
		}
	}
	return result
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
