package coordinator

import (
	"time"

	"meteopoll/internal/derive"
	"meteopoll/internal/meteomatics"
	"meteopoll/internal/types"
)

// conditionIndex maps hourly timestamps (unix seconds) to mapped conditions.
// Keying by unix seconds sidesteps time.Time equality pitfalls across
// locations. Rebuilt from the symbol series on every hourly fetch.
type conditionIndex map[int64]types.Condition

// buildConditionIndex maps every numeric hourly weather symbol to its
// condition. Unmappable codes are left out, so lookups on them read as
// "condition unavailable".
func buildConditionIndex(symbols types.TimeSeries) conditionIndex {
	idx := make(conditionIndex, len(symbols))
	for _, s := range symbols {
		if s.Value == nil {
			continue
		}
		if cond, ok := meteomatics.MapSymbol(int(*s.Value)); ok {
			idx[s.Timestamp.Unix()] = cond
		}
	}
	return idx
}

// buildCurrent assembles the point-in-time snapshot from the hourly series at
// the current hour. Parameters absent from the slice stay nil.
func buildCurrent(series map[string]types.TimeSeries, at time.Time, idx conditionIndex) types.CurrentSnapshot {
	return types.CurrentSnapshot{
		Temperature: derive.ValueAt(series[meteomatics.ParamTemperature], at),
		Humidity:    derive.ValueAt(series[meteomatics.ParamHumidity], at),
		Pressure:    derive.ValueAt(series[meteomatics.ParamPressure], at),
		WindSpeed:   derive.ValueAt(series[meteomatics.ParamWindSpeed], at),
		WindBearing: derive.ValueAt(series[meteomatics.ParamWindDir], at),
		WindGust:    derive.ValueAt(series[meteomatics.ParamWindGust1h], at),
		UVIndex:     derive.ValueAt(series[meteomatics.ParamUVIndex], at),
		Condition:   idx[at.Unix()],
	}
}

// buildHourly assembles one forecast entry per hourly temperature sample. The
// temperature series acts as the timestamp spine; other parameters are looked
// up per timestamp and stay nil where the provider omitted them.
func buildHourly(series map[string]types.TimeSeries, idx conditionIndex) []types.HourlyForecastEntry {
	spine := series[meteomatics.ParamTemperature]
	entries := make([]types.HourlyForecastEntry, 0, len(spine))
	for _, s := range spine {
		ts := s.Timestamp
		entries = append(entries, types.HourlyForecastEntry{
			Timestamp:        ts,
			Temperature:      s.Value,
			Humidity:         derive.ValueAt(series[meteomatics.ParamHumidity], ts),
			Pressure:         derive.ValueAt(series[meteomatics.ParamPressure], ts),
			WindSpeed:        derive.ValueAt(series[meteomatics.ParamWindSpeed], ts),
			WindBearing:      derive.ValueAt(series[meteomatics.ParamWindDir], ts),
			WindGust:         derive.ValueAt(series[meteomatics.ParamWindGust1h], ts),
			UVIndex:          derive.ValueAt(series[meteomatics.ParamUVIndex], ts),
			Condition:        idx[ts.Unix()],
			Precipitation:    derive.ValueAt(series[meteomatics.ParamPrecip1h], ts),
			Precipitation24h: derive.ValueAt(series[meteomatics.ParamPrecip24h], ts),
		})
	}
	return entries
}

// dailySpinePreference orders the daily parameters tried as the timestamp
// spine for daily entries. The first one with samples wins.
var dailySpinePreference = []string{
	meteomatics.ParamTempMax24h,
	meteomatics.ParamSymbol24h,
	meteomatics.ParamPrecip24h,
	meteomatics.ParamTempMin24h,
}

// buildDaily assembles one forecast entry per day from the daily series,
// substituting hourly-derived values for parameters the daily slice does not
// carry. Fetched values always win over derived ones.
func buildDaily(daily, hourly map[string]types.TimeSeries, loc *time.Location) []types.DailyForecastEntry {
	var spine types.TimeSeries
	for _, param := range dailySpinePreference {
		if len(daily[param]) > 0 {
			spine = daily[param]
			break
		}
	}
	if len(spine) == 0 {
		return nil
	}

	highLow := derive.DailyHighLow(hourly[meteomatics.ParamTemperature], loc)

	entries := make([]types.DailyForecastEntry, 0, len(spine))
	for _, s := range spine {
		ts := s.Timestamp
		dayStart := meteomatics.TruncateDay(ts.In(loc))
		noon := dayStart.Add(12 * time.Hour)
		hl := highLow[dayStart]

		high := derive.ValueAt(daily[meteomatics.ParamTempMax24h], ts)
		if high == nil {
			high = hl.High
		}
		low := derive.ValueAt(daily[meteomatics.ParamTempMin24h], ts)
		if low == nil {
			low = hl.Low
		}

		var cond types.Condition
		if code := derive.ValueAt(daily[meteomatics.ParamSymbol24h], ts); code != nil {
			cond, _ = meteomatics.MapSymbol(int(*code))
		}
		if cond == "" {
			cond, _ = derive.InferDailyCondition(hourly[meteomatics.ParamSymbol1h], dayStart)
		}

		precip := derive.ValueAt(daily[meteomatics.ParamPrecip24h], ts)
		if precip == nil {
			precip = derive.SumOverWindow(hourly[meteomatics.ParamPrecip1h], dayStart, dayStart.Add(24*time.Hour))
		}

		entries = append(entries, types.DailyForecastEntry{
			Timestamp:     ts,
			TempHigh:      high,
			TempLow:       low,
			Condition:     cond,
			Precipitation: precip,
			WindSpeed:     dailyOrNearest(daily[meteomatics.ParamWindSpeed], hourly[meteomatics.ParamWindSpeed], ts, noon),
			WindBearing:   dailyOrNearest(daily[meteomatics.ParamWindDir], hourly[meteomatics.ParamWindDir], ts, noon),
			WindGust:      dailyOrNearest(daily[meteomatics.ParamWindGust24h], hourly[meteomatics.ParamWindGust1h], ts, noon),
			Pressure:      dailyOrNearest(daily[meteomatics.ParamPressure], hourly[meteomatics.ParamPressure], ts, noon),
			UVIndex:       dailyOrNearest(daily[meteomatics.ParamUVIndex], hourly[meteomatics.ParamUVIndex], ts, noon),
			Sunrise:       sunTime(daily[meteomatics.ParamSunrise], ts),
			Sunset:        sunTime(daily[meteomatics.ParamSunset], ts),
		})
	}
	return entries
}

// dailyOrNearest prefers the directly-fetched daily value; when absent it
// stands in the hourly sample nearest to that day's local noon.
func dailyOrNearest(daily, hourly types.TimeSeries, ts, noon time.Time) *float64 {
	if v := derive.ValueAt(daily, ts); v != nil {
		return v
	}
	return derive.NearestValue(hourly, noon)
}

// sunTime parses a sunrise/sunset sample, whose value is an ISO timestamp
// string rather than a number.
func sunTime(series types.TimeSeries, ts time.Time) *time.Time {
	text := derive.TextAt(series, ts)
	if text == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return nil
	}
	return &parsed
}
