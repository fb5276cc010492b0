package types

import "time"

// Sample is one (timestamp, value) pair of a parameter time series.
//
// Value is nil when the provider returned null or a value that could not be
// interpreted as a number. Text retains the raw representation for parameters
// whose values are not numeric (sunrise/sunset timestamps).
type Sample struct {
	Timestamp time.Time
	Value     *float64
	Text      string
}

// TimeSeries is an ordered sequence of samples for a single parameter,
// in request order. A parsed series is never mutated after parse; the
// derivation engine only reads it.
type TimeSeries []Sample

// Coordinate is the fixed location of one installation, in float degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Credentials are the HTTP Basic auth credentials for the upstream API.
type Credentials struct {
	Username string
	Password SecretString
}

// CurrentSnapshot is a single point-in-time reading derived from the latest
// hourly fetch. It is overwritten wholesale each cycle; there is no partial
// update. Nil fields mean the parameter was unavailable for the slice.
type CurrentSnapshot struct {
	Temperature *float64  `json:"temperature_c"`
	Humidity    *float64  `json:"humidity_percent,omitempty"`
	Pressure    *float64  `json:"pressure_hpa,omitempty"`
	WindSpeed   *float64  `json:"wind_speed_ms,omitempty"`
	WindBearing *float64  `json:"wind_bearing_deg,omitempty"`
	WindGust    *float64  `json:"wind_gust_ms,omitempty"`
	UVIndex     *float64  `json:"uv_index,omitempty"`
	Condition   Condition `json:"condition,omitempty"`
}

// HourlyForecastEntry is one hour of forecast data. Precipitation24h is the
// running 24-hour total the provider reports alongside the 1-hour value.
type HourlyForecastEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	Temperature      *float64  `json:"temperature_c"`
	Humidity         *float64  `json:"humidity_percent,omitempty"`
	Pressure         *float64  `json:"pressure_hpa,omitempty"`
	WindSpeed        *float64  `json:"wind_speed_ms,omitempty"`
	WindBearing      *float64  `json:"wind_bearing_deg,omitempty"`
	WindGust         *float64  `json:"wind_gust_ms,omitempty"`
	UVIndex          *float64  `json:"uv_index,omitempty"`
	Condition        Condition `json:"condition,omitempty"`
	Precipitation    *float64  `json:"precipitation_mm,omitempty"`
	Precipitation24h *float64  `json:"precipitation_24h_mm,omitempty"`
}

// DailyForecastEntry is one day of forecast data. Timestamp is the local day
// start. Fields absent from the fetched daily slice are substituted from the
// hourly series where possible; fetched values always win over derived ones.
type DailyForecastEntry struct {
	Timestamp     time.Time  `json:"timestamp"`
	TempHigh      *float64   `json:"temp_high_c"`
	TempLow       *float64   `json:"temp_low_c"`
	Condition     Condition  `json:"condition,omitempty"`
	Precipitation *float64   `json:"precipitation_mm,omitempty"`
	WindSpeed     *float64   `json:"wind_speed_ms,omitempty"`
	WindBearing   *float64   `json:"wind_bearing_deg,omitempty"`
	WindGust      *float64   `json:"wind_gust_ms,omitempty"`
	Pressure      *float64   `json:"pressure_hpa,omitempty"`
	UVIndex       *float64   `json:"uv_index,omitempty"`
	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
}

// WeatherData is the combined result of one successful refresh cycle. The
// last successful WeatherData remains readable between cycles as the
// last-known-good state for the display layer.
type WeatherData struct {
	Current   CurrentSnapshot       `json:"current"`
	Hourly    []HourlyForecastEntry `json:"hourly"`
	Daily     []DailyForecastEntry  `json:"daily"`
	FetchedAt time.Time             `json:"fetched_at"`
}

// Float returns a pointer to v. Convenience for literal optional values.
func Float(v float64) *float64 {
	return &v
}
