// Package config defines the global configuration structure for the meteopoll
// service. Configuration is loaded once at process initialization and is
// immutable thereafter (credential and plan updates at runtime go through the
// coordinator, not through config). It follows 12-Factor App principles by
// strictly separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> Struct Defaults (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup (fail fast).
package config

import (
	"time"

	"meteopoll/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the meteopoll service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"meteopoll"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server      ServerConfig
	Meteomatics MeteomaticsConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// MeteomaticsConfig holds the upstream API credentials, the installation
// coordinate, and the fetch schedule settings.
type MeteomaticsConfig struct {
	Username string       `envconfig:"METEOMATICS_USERNAME" validate:"required"`
	Password SecretString `envconfig:"METEOMATICS_PASSWORD" validate:"required"`

	BaseURL string `envconfig:"METEOMATICS_BASE_URL" default:"https://api.meteomatics.com" validate:"url"`
	Model   string `envconfig:"METEOMATICS_MODEL" default:"mix"`

	Latitude  float64 `envconfig:"LATITUDE" validate:"min=-90,max=90"`
	Longitude float64 `envconfig:"LONGITUDE" validate:"min=-180,max=180"`

	// PlanType selects the parameter sets and daily fetch cadence.
	PlanType string `envconfig:"PLAN_TYPE" default:"paid_trial" validate:"oneof=basic paid_trial"`

	// OptionalParameters are layered onto the basic-plan baseline, at most
	// five, each from the fixed optional-parameter catalog. Ignored for the
	// paid/trial plan. Comma-separated in the environment.
	OptionalParameters []string `envconfig:"BASIC_OPTIONAL_PARAMETERS" validate:"max=5"`

	// UpdateIntervalMinutes is the refresh cadence. The free plan allows one
	// request every 20 minutes, which is also the paid-plan default.
	UpdateIntervalMinutes int `envconfig:"UPDATE_INTERVAL_MINUTES" default:"20" validate:"min=5,max=120"`

	// Timezone is the IANA name of the installation's local time zone. All
	// request windows and the daily fetch schedule are computed in this zone.
	Timezone string `envconfig:"TIMEZONE" default:"UTC"`

	RequestTimeout time.Duration `envconfig:"METEOMATICS_REQUEST_TIMEOUT" default:"30s"`
}

// UpdateInterval returns the refresh cadence as a duration.
func (m MeteomaticsConfig) UpdateInterval() time.Duration {
	return time.Duration(m.UpdateIntervalMinutes) * time.Minute
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrTimezone indicates the configured timezone is not a valid IANA name.
	ErrTimezone ConfigErrorType = "TIMEZONE_INVALID"
)
