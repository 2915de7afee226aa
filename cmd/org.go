package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
)

var (
	orgConfigPath string
	orgRoster     string
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Print the org chart",
	RunE:  runOrg,
}

func init() {
	orgCmd.Flags().StringVarP(&orgConfigPath, "config", "c", "", "Config file (default ~/.virtualco/config.json)")
	orgCmd.Flags().StringVar(&orgRoster, "roster", "", "Roster YAML (default: built-in company)")
	rootCmd.AddCommand(orgCmd)
}

func runOrg(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(orgConfigPath, orgRoster, "")
	if err != nil {
		return err
	}
	company, err := buildCompany(cfg, log.New(io.Discard, "", 0))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := company.WriteChart(out); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d agents\n", len(company.Agents))
	for _, w := range company.Warnings {
		fmt.Fprintf(out, "⚠️ %s\n", w)
	}
	return nil
}
