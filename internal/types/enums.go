package types

// PlanTier identifies the Meteomatics subscription plan. The plan determines
// which parameter sets are requested and how daily data is scheduled.
type PlanTier string

const (
	PlanBasic     PlanTier = "basic"
	PlanPaidTrial PlanTier = "paid_trial"
)

// Valid reports whether the tier is a known plan.
func (p PlanTier) Valid() bool {
	return p == PlanBasic || p == PlanPaidTrial
}

// Condition is the normalized weather-state vocabulary derived from the
// provider's numeric weather-symbol codes.
type Condition string

const (
	ConditionSunny          Condition = "sunny"
	ConditionClearNight     Condition = "clear-night"
	ConditionPartlyCloudy   Condition = "partlycloudy"
	ConditionCloudy         Condition = "cloudy"
	ConditionFog            Condition = "fog"
	ConditionRainy          Condition = "rainy"
	ConditionSnowy          Condition = "snowy"
	ConditionHail           Condition = "hail"
	ConditionLightning      Condition = "lightning"
	ConditionLightningRainy Condition = "lightning-rainy"
	ConditionTornado        Condition = "tornado"
	ConditionWindy          Condition = "windy"
	ConditionWindyVariant   Condition = "windy-variant"
	ConditionExceptional    Condition = "exceptional"
)

// ParameterScope tags an optional parameter with the forecast scope(s) it
// applies to. A "both"-scoped parameter is added to the hourly and the daily
// request parameter sets.
type ParameterScope string

const (
	ScopeHourly ParameterScope = "hourly"
	ScopeDaily  ParameterScope = "daily"
	ScopeBoth   ParameterScope = "both"
)

// AppliesHourly reports whether the scope includes hourly fetches.
func (s ParameterScope) AppliesHourly() bool {
	return s == ScopeHourly || s == ScopeBoth
}

// AppliesDaily reports whether the scope includes daily fetches.
func (s ParameterScope) AppliesDaily() bool {
	return s == ScopeDaily || s == ScopeBoth
}
