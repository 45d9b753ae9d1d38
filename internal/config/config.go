// Package config handles environment-driven configuration using Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	minreqs "github.com/minreqs/go-minreqs"
)

// Environment variables read by Load. Each maps to one Config field and
// is overridden by the matching CLI flag when that flag is set.
const (
	EnvOffline          = "MIN_REQS_OFFLINE"
	EnvTryPip           = "MIN_REQS_TRY_PIP"
	EnvPinUnconstrained = "MIN_REQS_PIN_UNCONSTRAINED"
	EnvIndexURL         = "MIN_REQS_INDEX_URL"
)

// Config holds the settings that shape resolution behavior. Values come
// from environment variables, falling back to DefaultConfig.
type Config struct {
	// Offline disables every catalog backend. Specifiers that need
	// catalog knowledge pass through unchanged.
	Offline bool `mapstructure:"offline"`

	// TryPip probes for a pip executable and prefers it over the
	// registry backend when found.
	TryPip bool `mapstructure:"try_pip"`

	// PinUnconstrained pins bare names to the lowest stable release
	// known to the catalog.
	PinUnconstrained bool `mapstructure:"pin_unconstrained"`

	// IndexURL overrides the package index queried by the registry
	// backend. Empty selects the public index.
	IndexURL string `mapstructure:"index_url"`
}

// DefaultConfig returns the settings used when no environment variables
// are set: query the catalog, try pip first, pin unconstrained names.
func DefaultConfig() *Config {
	return &Config{
		Offline:          false,
		TryPip:           true,
		PinUnconstrained: true,
		IndexURL:         "",
	}
}

// Load reads configuration from the MIN_REQS_* environment variables.
// Unset variables keep their defaults. Boolean variables accept the
// strconv.ParseBool spellings (1, t, true, 0, f, false).
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("offline", defaults.Offline)
	v.SetDefault("try_pip", defaults.TryPip)
	v.SetDefault("pin_unconstrained", defaults.PinUnconstrained)
	v.SetDefault("index_url", defaults.IndexURL)

	bindings := map[string]string{
		"offline":           EnvOffline,
		"try_pip":           EnvTryPip,
		"pin_unconstrained": EnvPinUnconstrained,
		"index_url":         EnvIndexURL,
	}
	for key, envVar := range bindings {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Policy converts the loaded settings into a resolution policy.
func (c *Config) Policy() minreqs.Policy {
	return minreqs.Policy{
		PinUnconstrained: c.PinUnconstrained,
		Offline:          c.Offline,
		TryPip:           c.TryPip,
	}
}
