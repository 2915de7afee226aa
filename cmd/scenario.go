package cmd

import (
	"fmt"
	"io"
	"log"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dayuer/virtualco/internal/scenario"
	"github.com/dayuer/virtualco/internal/utils"
)

var (
	scenarioConfigPath string
	scenarioPath       string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "List the scenario triggers",
	RunE:  runScenarioList,
}

func init() {
	scenarioCmd.Flags().StringVarP(&scenarioConfigPath, "config", "c", "", "Config file (default ~/.virtualco/config.json)")
	scenarioCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file or directory (default: built-in day)")
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(scenarioConfigPath, "", scenarioPath)
	if err != nil {
		return err
	}
	sc, err := scenario.Load(utils.ExpandHome(cfg.Org.ScenarioPath), log.New(io.Discard, "", 0))
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario %q: %d triggers, last at tick %d\n\n", sc.Name, len(sc.Triggers), sc.LastTick())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICK\tKIND\tFROM\tTO\tPAYLOAD")
	for _, t := range sc.Triggers {
		to := t.To
		if t.ToTier != "" {
			to = "tier:" + t.ToTier
		}
		if !t.IsEnabled() {
			to += " (disabled)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.Tick, t.MessageKind(), t.From, to, utils.TruncateString(t.Payload, 50, "..."))
	}
	return tw.Flush()
}
