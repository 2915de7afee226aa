package cmd

import (
	"fmt"
	"log"

	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/config"
	"github.com/dayuer/virtualco/internal/org"
	"github.com/dayuer/virtualco/internal/utils"
)

// loadConfig reads the config file and applies the roster and scenario path
// flags shared by every command.
func loadConfig(path, roster, scenarioPath string) (config.Config, error) {
	cfg, err := config.Load(utils.ExpandHome(path))
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if roster != "" {
		cfg.Org.RosterPath = roster
	}
	if scenarioPath != "" {
		cfg.Org.ScenarioPath = scenarioPath
	}
	return cfg, nil
}

// buildCompany loads the roster and registers every agent on a fresh bus.
func buildCompany(cfg config.Config, logger *log.Logger) (*org.Company, error) {
	policy, err := bus.ParsePolicy(cfg.Simulation.Policy)
	if err != nil {
		return nil, err
	}
	entries, err := org.LoadRoster(utils.ExpandHome(cfg.Org.RosterPath))
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	return org.Build(entries, bus.New(policy, logger), logger)
}
