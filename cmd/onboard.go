package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dayuer/virtualco/internal/config"
	"github.com/dayuer/virtualco/internal/org"
	"github.com/dayuer/virtualco/internal/scenario"
	"github.com/dayuer/virtualco/internal/utils"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize virtualco configuration, roster and scenario",
	RunE:  runOnboard,
}

func init() {
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, args []string) error {
	return onboard(cmd, config.GetConfigPath())
}

func onboard(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	home := filepath.Dir(configPath)
	if _, err := utils.EnsureDir(home); err != nil {
		return fmt.Errorf("creating %s: %w", home, err)
	}

	rosterPath := filepath.Join(home, "roster.yaml")
	scenarioPath := filepath.Join(home, "scenario.yaml")

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config already exists at %s\n", configPath)
	} else {
		cfg := config.DefaultConfig()
		cfg.Org.RosterPath = rosterPath
		cfg.Org.ScenarioPath = scenarioPath
		if err := config.Save(cfg, configPath); err != nil {
			return fmt.Errorf("creating config: %w", err)
		}
		fmt.Fprintf(out, "✓ Created config at %s\n", configPath)
	}

	files := []struct {
		path string
		data []byte
	}{
		{rosterPath, org.DefaultRoster()},
		{scenarioPath, scenario.DefaultScenario()},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			continue
		}
		if err := os.WriteFile(f.path, f.data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", filepath.Base(f.path), err)
		}
		fmt.Fprintf(out, "  Created %s\n", filepath.Base(f.path))
	}

	fmt.Fprintln(out, "\n🏢 virtualco is ready!")
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. Edit the org in %s or the day in %s\n", rosterPath, scenarioPath)
	fmt.Fprintln(out, "  2. Run: virtualco run --interval 0")
	return nil
}
