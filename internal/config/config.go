// Package config handles configuration loading, saving, and schema definition.
package config

import (
	"fmt"
	"time"

	"github.com/dayuer/virtualco/internal/bus"
)

// Config is the top-level virtualco configuration.
// JSON keys are camelCase; TOML files use the same names.
type Config struct {
	Simulation SimulationConfig `json:"simulation" toml:"simulation"`
	Org        OrgConfig        `json:"org" toml:"org"`
	Output     OutputConfig     `json:"output" toml:"output"`
}

// SimulationConfig controls the tick loop.
type SimulationConfig struct {
	MaxTicks     int    `json:"maxTicks,omitempty" toml:"maxTicks"`
	TickInterval string `json:"tickInterval,omitempty" toml:"tickInterval"` // Go duration, "0s" disables pacing
	Seed         int64  `json:"seed" toml:"seed"`
	StallTicks   int    `json:"stallTicks,omitempty" toml:"stallTicks"`
	Policy       string `json:"policy,omitempty" toml:"policy"` // round-robin | least-loaded | affinity
}

// OrgConfig points at the roster and scenario files. Empty paths use the
// built-in ones.
type OrgConfig struct {
	RosterPath   string `json:"rosterPath,omitempty" toml:"rosterPath"`
	ScenarioPath string `json:"scenarioPath,omitempty" toml:"scenarioPath"`
}

// OutputConfig controls what the run prints or writes.
type OutputConfig struct {
	NoColor     bool   `json:"noColor,omitempty" toml:"noColor"`
	Metrics     bool   `json:"metrics,omitempty" toml:"metrics"`
	ActivityDir string `json:"activityDir,omitempty" toml:"activityDir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			MaxTicks:     45,
			TickInterval: "1s",
			Seed:         1,
			StallTicks:   8,
			Policy:       string(bus.PolicyRoundRobin),
		},
	}
}

// Interval parses the tick interval.
func (s SimulationConfig) Interval() (time.Duration, error) {
	if s.TickInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("tickInterval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("tickInterval: negative duration %s", d)
	}
	return d, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Simulation.MaxTicks <= 0 {
		return fmt.Errorf("maxTicks must be positive, got %d", c.Simulation.MaxTicks)
	}
	if c.Simulation.StallTicks <= 0 {
		return fmt.Errorf("stallTicks must be positive, got %d", c.Simulation.StallTicks)
	}
	if _, err := c.Simulation.Interval(); err != nil {
		return err
	}
	if _, err := bus.ParsePolicy(c.Simulation.Policy); err != nil {
		return err
	}
	return nil
}
