package meteomatics

import (
	"testing"

	"meteopoll/internal/types"
)

// TestMapSymbolKnownCodes spot-checks the primary code table.
func TestMapSymbolKnownCodes(t *testing.T) {
	tests := []struct {
		code int
		want types.Condition
	}{
		{0, types.ConditionSunny},
		{1, types.ConditionSunny},
		{2, types.ConditionPartlyCloudy},
		{4, types.ConditionCloudy},
		{5, types.ConditionFog},
		{6, types.ConditionRainy},
		{10, types.ConditionRainy},
		{11, types.ConditionSnowy},
		{15, types.ConditionSnowy},
		{16, types.ConditionHail},
		{17, types.ConditionLightning},
		{18, types.ConditionLightningRainy},
		{19, types.ConditionTornado},
		{20, types.ConditionWindy},
		{21, types.ConditionWindyVariant},
		{22, types.ConditionExceptional},
	}

	for _, tt := range tests {
		got, ok := MapSymbol(tt.code)
		if !ok {
			t.Errorf("MapSymbol(%d) not found", tt.code)
			continue
		}
		if got != tt.want {
			t.Errorf("MapSymbol(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestMapSymbolNightVariants verifies every primary code's +100 variant maps
// to the same condition except the day/night-distinct clear-sky codes.
func TestMapSymbolNightVariants(t *testing.T) {
	for code, dayCond := range symbolConditions {
		nightCode := code + nightOffset
		got, ok := MapSymbol(nightCode)
		if !ok {
			t.Errorf("MapSymbol(%d) (night variant of %d) not found", nightCode, code)
			continue
		}

		want := dayCond
		if dayCond == types.ConditionSunny {
			want = types.ConditionClearNight
		}
		if got != want {
			t.Errorf("MapSymbol(%d) = %q, want %q", nightCode, got, want)
		}
	}
}

// TestMapSymbolUnknownCodes verifies unknown codes report absence, not an error.
func TestMapSymbolUnknownCodes(t *testing.T) {
	for _, code := range []int{-1, 23, 99, 123, 250} {
		if cond, ok := MapSymbol(code); ok {
			t.Errorf("MapSymbol(%d) = %q, want not found", code, cond)
		}
	}
}
