package meteomatics

import "meteopoll/internal/types"

// Provider parameter names used across the fetch pipeline. The suffix after
// the colon is the unit the provider reports the parameter in.
const (
	ParamTemperature     = "t_2m:C"
	ParamPrecip1h        = "precip_1h:mm"
	ParamPrecip24h       = "precip_24h:mm"
	ParamWindSpeed       = "wind_speed_10m:ms"
	ParamWindDir         = "wind_dir_10m:d"
	ParamWindGust1h      = "wind_gusts_10m_1h:ms"
	ParamWindGust24h     = "wind_gusts_10m_24h:ms"
	ParamPressure        = "msl_pressure:hPa"
	ParamHumidity        = "relative_humidity_2m:p"
	ParamUVIndex         = "uv:idx"
	ParamSymbol1h        = "weather_symbol_1h:idx"
	ParamSymbol24h       = "weather_symbol_24h:idx"
	ParamTempMax24h      = "t_max_2m_24h:C"
	ParamTempMin24h      = "t_min_2m_24h:C"
	ParamSunrise         = "sunrise:sql"
	ParamSunset          = "sunset:sql"
)

// MaxParametersPerRequest is the provider's per-request parameter cap. Request
// parameter lists longer than this are split into multiple requests.
const MaxParametersPerRequest = 10

// BasicOptionalParameterLimit bounds how many optional parameters a basic-plan
// installation may layer onto the baseline sets.
const BasicOptionalParameterLimit = 5

// hourlyBaselineBasic is the small fixed hourly set for the basic plan.
// Optional parameters with an hourly scope are appended to it.
var hourlyBaselineBasic = []string{
	ParamTemperature,
	ParamPrecip1h,
	ParamWindSpeed,
	ParamWindDir,
	ParamSymbol1h,
}

// dailyBaselineBasic is the small fixed daily set for the basic plan.
var dailyBaselineBasic = []string{
	ParamTempMax24h,
	ParamTempMin24h,
	ParamPrecip24h,
	ParamSymbol24h,
}

// hourlyParametersPaidTrial is the full hourly set available on paid/trial plans.
var hourlyParametersPaidTrial = []string{
	ParamTemperature,
	ParamPrecip1h,
	ParamWindSpeed,
	ParamWindDir,
	ParamWindGust1h,
	ParamPressure,
	ParamUVIndex,
	ParamSymbol1h,
	ParamPrecip24h,
	ParamWindGust24h,
	ParamHumidity,
}

// dailyParametersPaidTrial is the full daily set available on paid/trial plans.
var dailyParametersPaidTrial = []string{
	ParamTempMax24h,
	ParamTempMin24h,
	ParamPrecip24h,
	ParamWindGust24h,
	ParamWindSpeed,
	ParamWindDir,
	ParamPressure,
	ParamUVIndex,
	ParamSunrise,
	ParamSunset,
	ParamSymbol24h,
}

// OptionalParameterScopes is the fixed catalog of optional parameters a
// basic-plan installation may select, each tagged with the forecast scope(s)
// it applies to.
var OptionalParameterScopes = map[string]types.ParameterScope{
	ParamHumidity:    types.ScopeHourly,
	ParamPressure:    types.ScopeBoth,
	ParamUVIndex:     types.ScopeBoth,
	ParamWindGust1h:  types.ScopeHourly,
	ParamWindGust24h: types.ScopeDaily,
	ParamSunrise:     types.ScopeDaily,
	ParamSunset:      types.ScopeDaily,
}

// ValidateOptionalParameters checks a basic-plan optional parameter selection
// against the catalog and the selection limit.
func ValidateOptionalParameters(selected []string) error {
	if len(selected) > BasicOptionalParameterLimit {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationOptionalParams,
			"too many optional parameters selected",
			nil,
			map[string]any{"selected": len(selected), "limit": BasicOptionalParameterLimit},
		)
	}
	for _, param := range selected {
		if _, ok := OptionalParameterScopes[param]; !ok {
			return types.NewAppErrorWithDetails(
				types.ErrCodeValidationOptionalParams,
				"unknown optional parameter",
				nil,
				map[string]any{"parameter": param},
			)
		}
	}
	return nil
}

// HourlyParameters returns the hourly request parameter set for a plan.
// For the basic plan, selected optional parameters whose scope includes
// hourly are layered onto the baseline, preserving selection order.
func HourlyParameters(plan types.PlanTier, optional []string) []string {
	if plan != types.PlanBasic {
		return append([]string(nil), hourlyParametersPaidTrial...)
	}
	params := append([]string(nil), hourlyBaselineBasic...)
	for _, param := range optional {
		if scope, ok := OptionalParameterScopes[param]; ok && scope.AppliesHourly() {
			params = append(params, param)
		}
	}
	return params
}

// DailyParameters returns the daily request parameter set for a plan.
func DailyParameters(plan types.PlanTier, optional []string) []string {
	if plan != types.PlanBasic {
		return append([]string(nil), dailyParametersPaidTrial...)
	}
	params := append([]string(nil), dailyBaselineBasic...)
	for _, param := range optional {
		if scope, ok := OptionalParameterScopes[param]; ok && scope.AppliesDaily() {
			params = append(params, param)
		}
	}
	return params
}

// ChunkParameters partitions a parameter list into groups of at most limit,
// preserving input order. The final group may be shorter; an empty input
// yields no groups.
func ChunkParameters(parameters []string, limit int) [][]string {
	if len(parameters) == 0 || limit <= 0 {
		return nil
	}

	var chunks [][]string
	for start := 0; start < len(parameters); start += limit {
		end := start + limit
		if end > len(parameters) {
			end = len(parameters)
		}
		chunks = append(chunks, parameters[start:end])
	}
	return chunks
}
