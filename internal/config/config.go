package config

import (
	"time"

	"github.com/coinchrono/coinchrono/internal/scheduler"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration
type Config struct {
	// Addresses to analyze. analyze uses the first one unless --address is
	// given; watch runs over all of them.
	Addresses []string `mapstructure:"addresses" validate:"omitempty,dive,eth_addr"`

	// APIKey authenticates against the Etherscan API. Usually supplied via
	// the ETHERSCAN_API_KEY environment variable rather than the file.
	APIKey string `mapstructure:"api_key"`

	// APIURL overrides the Etherscan endpoint, mainly for tests.
	APIURL string `mapstructure:"api_url" validate:"omitempty,url"`

	// Interval between watch-mode runs: a duration ("30m", "1h") or a cron
	// expression ("0 */6 * * *").
	Interval string `mapstructure:"interval" validate:"omitempty,schedule"`

	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// HTTPPort serves the watch-mode health endpoint.
	HTTPPort int `mapstructure:"http_port" validate:"omitempty,min=1024,max=65535"`

	// Timezone anchors cron schedules ("Europe/Brussels"). Defaults to UTC.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`

	// RunImmediately triggers a run at watch startup instead of waiting for
	// the first tick. Defaults to true.
	RunImmediately *bool `mapstructure:"run_immediately"`
}

// GetTimezone returns the configured timezone location, or UTC if unset or
// unparseable.
func (c *Config) GetTimezone() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ShouldRunImmediately returns whether a run fires at startup. Defaults to
// true when not configured.
func (c *Config) ShouldRunImmediately() bool {
	if c.RunImmediately == nil {
		return true
	}
	return *c.RunImmediately
}

// NewValidator creates a validator with the custom rules used by Config.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("eth_addr", ethAddressValidator)
	validate.RegisterValidation("schedule", scheduleValidator)
	return validate
}

// ethAddressValidator replaces the builtin eth_addr rule with go-ethereum's
// own address check.
func ethAddressValidator(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// scheduleValidator accepts anything the scheduler can run: durations on a
// clean clock boundary or five-field cron expressions.
func scheduleValidator(fl validator.FieldLevel) bool {
	return scheduler.ValidateInterval(fl.Field().String()) == nil
}
