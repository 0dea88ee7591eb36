package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LEVELUP_CONFIG is set
//  3. env (prefix LEVELUP_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LEVELUP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: LEVELUP_ADDR, LEVELUP_HEIST_BASE_SECONDS, ...
	// Map env keys like LEVELUP_SWEEP_INTERVAL_SECONDS -> sweep_interval_seconds
	// (flat keys, underscores preserved to match koanf tags on the struct).
	envProvider := env.Provider("LEVELUP_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "levelup_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HeistBaseSeconds <= 0:
		return fmt.Errorf("%w: heist_base_seconds must be positive", ErrInvalidConfig)
	case c.MinHeistSeconds < 0:
		return fmt.Errorf("%w: min_heist_seconds must not be negative", ErrInvalidConfig)
	case c.MaxSafeAttempts < 1:
		return fmt.Errorf("%w: max_safe_attempts must be at least 1", ErrInvalidConfig)
	case c.SuccessTakeRate < 0 || c.SuccessTakeRate > 1:
		return fmt.Errorf("%w: success_take_rate must be within [0,1]", ErrInvalidConfig)
	case c.FailurePenaltyRate < 0 || c.FailurePenaltyRate > 1:
		return fmt.Errorf("%w: failure_penalty_rate must be within [0,1]", ErrInvalidConfig)
	case c.SweepIntervalSeconds <= 0:
		return fmt.Errorf("%w: sweep_interval_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
