package types

import (
	"encoding/json"
	"fmt"
	"testing"
)

// TestSecretStringRedactsInString verifies fmt formatting never leaks the raw value.
func TestSecretStringRedactsInString(t *testing.T) {
	secret := SecretString("hunter2")

	if got := fmt.Sprintf("%s", secret); got != "***REDACTED***" {
		t.Errorf("Sprintf(%%s) = %q, want redacted placeholder", got)
	}
	if got := fmt.Sprintf("%v", secret); got != "***REDACTED***" {
		t.Errorf("Sprintf(%%v) = %q, want redacted placeholder", got)
	}
}

// TestSecretStringRedactsInJSON verifies JSON marshalling never leaks the raw value.
func TestSecretStringRedactsInJSON(t *testing.T) {
	payload := struct {
		Password SecretString `json:"password"`
	}{Password: "hunter2"}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"password":"***REDACTED***"}` {
		t.Errorf("Marshal = %s, want redacted placeholder", data)
	}
}

// TestSecretStringUnmask verifies Unmask returns the plaintext.
func TestSecretStringUnmask(t *testing.T) {
	secret := SecretString("hunter2")
	if secret.Unmask() != "hunter2" {
		t.Errorf("Unmask() = %q, want %q", secret.Unmask(), "hunter2")
	}
}

// TestParameterScope verifies scope membership for both fetch kinds.
func TestParameterScope(t *testing.T) {
	tests := []struct {
		scope      ParameterScope
		hourly     bool
		daily      bool
	}{
		{ScopeHourly, true, false},
		{ScopeDaily, false, true},
		{ScopeBoth, true, true},
	}

	for _, tt := range tests {
		if got := tt.scope.AppliesHourly(); got != tt.hourly {
			t.Errorf("%s.AppliesHourly() = %v, want %v", tt.scope, got, tt.hourly)
		}
		if got := tt.scope.AppliesDaily(); got != tt.daily {
			t.Errorf("%s.AppliesDaily() = %v, want %v", tt.scope, got, tt.daily)
		}
	}
}

// TestPlanTierValid verifies plan tier validation.
func TestPlanTierValid(t *testing.T) {
	if !PlanBasic.Valid() || !PlanPaidTrial.Valid() {
		t.Error("known plan tiers should be valid")
	}
	if PlanTier("premium").Valid() {
		t.Error("unknown plan tier should be invalid")
	}
}
