package meteomatics

import (
	"encoding/json"
	"strconv"
	"time"

	"meteopoll/internal/types"
)

// Wire shape of the provider's JSON response. Each parameter carries one
// coordinate group per requested location; single-location queries use only
// the first group.
type apiResponse struct {
	Data []apiParameter `json:"data"`
}

type apiParameter struct {
	Parameter   string          `json:"parameter"`
	Coordinates []apiCoordinate `json:"coordinates"`
}

type apiCoordinate struct {
	Dates []apiSample `json:"dates"`
}

type apiSample struct {
	Date  string          `json:"date"`
	Value json.RawMessage `json:"value"`
}

// ParseResponse converts the provider's nested JSON into a flat mapping of
// parameter name to ordered time series.
//
// Decoding is tolerant: parameters missing a name or coordinate group and
// samples with unparseable dates are skipped silently, since the provider
// omits parameters with no data for the requested slice. Only a structurally
// unparseable body is an error.
func ParseResponse(body []byte) (map[string]types.TimeSeries, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamMalformed,
			"response body is not valid provider JSON",
			err,
		)
	}

	parsed := make(map[string]types.TimeSeries, len(resp.Data))
	for _, param := range resp.Data {
		if param.Parameter == "" || len(param.Coordinates) == 0 {
			continue
		}
		series := make(types.TimeSeries, 0, len(param.Coordinates[0].Dates))
		for _, sample := range param.Coordinates[0].Dates {
			ts, err := parseTime(sample.Date)
			if err != nil {
				continue
			}
			value, text := decodeValue(sample.Value)
			series = append(series, types.Sample{
				Timestamp: ts,
				Value:     value,
				Text:      text,
			})
		}
		parsed[param.Parameter] = series
	}
	return parsed, nil
}

// parseTime parses a provider timestamp. The provider emits RFC3339 with
// either a "Z" or a numeric offset.
func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

// decodeValue interprets a raw JSON sample value. Numbers (and numeric
// strings) become float pointers; non-numeric strings are retained raw for
// parameters like sunrise/sunset whose values are timestamps; null and
// anything unrecognized yield a nil value.
func decodeValue(raw json.RawMessage) (*float64, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ""
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num, ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.ParseFloat(text, 64); err == nil {
			return &parsed, text
		}
		return nil, text
	}

	return nil, ""
}
