package meteomatics

import "meteopoll/internal/types"

// nightOffset is added to a primary weather-symbol code to form its
// night-time variant (e.g. 1 "sunny" -> 101 "clear-night").
const nightOffset = 100

// symbolConditions maps the provider's primary weather-symbol codes to the
// normalized condition vocabulary. Night variants (code+100) resolve through
// the same table except where nightConditions overrides a day-only condition.
var symbolConditions = map[int]types.Condition{
	0:  types.ConditionSunny,
	1:  types.ConditionSunny,
	2:  types.ConditionPartlyCloudy,
	3:  types.ConditionPartlyCloudy,
	4:  types.ConditionCloudy,
	5:  types.ConditionFog,
	6:  types.ConditionRainy,
	7:  types.ConditionRainy,
	8:  types.ConditionRainy,
	9:  types.ConditionRainy,
	10: types.ConditionRainy,
	11: types.ConditionSnowy,
	12: types.ConditionSnowy,
	13: types.ConditionSnowy,
	14: types.ConditionSnowy,
	15: types.ConditionSnowy,
	16: types.ConditionHail,
	17: types.ConditionLightning,
	18: types.ConditionLightningRainy,
	19: types.ConditionTornado,
	20: types.ConditionWindy,
	21: types.ConditionWindyVariant,
	22: types.ConditionExceptional,
}

// nightConditions overrides day-only conditions for night-variant codes.
// Clear sky at night is "clear-night", not "sunny".
var nightConditions = map[int]types.Condition{
	nightOffset + 0: types.ConditionClearNight,
	nightOffset + 1: types.ConditionClearNight,
}

// MapSymbol maps a provider weather-symbol code to a normalized condition.
// Unknown codes return ("", false); callers must treat this as "condition
// unavailable", never as an error.
func MapSymbol(code int) (types.Condition, bool) {
	if cond, ok := symbolConditions[code]; ok {
		return cond, true
	}
	if cond, ok := nightConditions[code]; ok {
		return cond, true
	}
	if cond, ok := symbolConditions[code-nightOffset]; ok && code >= nightOffset {
		return cond, true
	}
	return "", false
}
