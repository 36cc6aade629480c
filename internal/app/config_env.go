package app

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding variables are set. Env takes precedence over a config file
// while flags, applied afterwards, remain highest precedence.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
