package config

import (
	"errors"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment needed for LoadConfig to succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("METEOMATICS_USERNAME", "acme")
	t.Setenv("METEOMATICS_PASSWORD", "s3cret")
	t.Setenv("LATITUDE", "47.3769")
	t.Setenv("LONGITUDE", "8.5417")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "local" {
		t.Errorf("Environment = %q, want local", cfg.Environment)
	}
	if cfg.Meteomatics.BaseURL != "https://api.meteomatics.com" {
		t.Errorf("BaseURL = %q", cfg.Meteomatics.BaseURL)
	}
	if cfg.Meteomatics.Model != "mix" {
		t.Errorf("Model = %q, want mix", cfg.Meteomatics.Model)
	}
	if cfg.Meteomatics.PlanType != "paid_trial" {
		t.Errorf("PlanType = %q, want paid_trial", cfg.Meteomatics.PlanType)
	}
	if cfg.Meteomatics.UpdateIntervalMinutes != 20 {
		t.Errorf("UpdateIntervalMinutes = %d, want 20", cfg.Meteomatics.UpdateIntervalMinutes)
	}
	if got := cfg.Meteomatics.UpdateInterval(); got != 20*time.Minute {
		t.Errorf("UpdateInterval() = %v, want 20m", got)
	}
	if cfg.Meteomatics.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.Meteomatics.RequestTimeout)
	}
	if cfg.Build.Version != "dev" {
		t.Errorf("Build.Version = %q, want dev", cfg.Build.Version)
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	t.Setenv("METEOMATICS_USERNAME", "")
	t.Setenv("METEOMATICS_PASSWORD", "")
	t.Setenv("LATITUDE", "47.0")
	t.Setenv("LONGITUDE", "8.0")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig should fail without credentials")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != ErrValidation {
		t.Errorf("error type = %s, want %s", cfgErr.Type, ErrValidation)
	}
}

func TestLoadConfigLatitudeOutOfRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LATITUDE", "97.5")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig should reject latitude > 90")
	}
}

func TestLoadConfigInvalidPlanType(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLAN_TYPE", "premium")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig should reject unknown plan types")
	}
}

func TestLoadConfigTooManyOptionalParameters(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLAN_TYPE", "basic")
	t.Setenv("BASIC_OPTIONAL_PARAMETERS", "a:x,b:x,c:x,d:x,e:x,f:x")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig should reject more than 5 optional parameters")
	}
}

func TestLoadConfigInvalidTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig should reject unknown timezones")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != ErrTimezone {
		t.Errorf("error type = %s, want %s", cfgErr.Type, ErrTimezone)
	}
}

func TestLoadConfigTimezoneResolution(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIMEZONE", "Europe/Zurich")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc.String() != "Europe/Zurich" {
		t.Errorf("Location() = %s, want Europe/Zurich", loc)
	}
}

func TestLoadConfigUpdateIntervalBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPDATE_INTERVAL_MINUTES", "2")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig should reject intervals below 5 minutes")
	}

	t.Setenv("UPDATE_INTERVAL_MINUTES", "180")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig should reject intervals above 120 minutes")
	}
}
