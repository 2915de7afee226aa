package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "virtualco",
	Short: "virtualco: a virtual software company run by role-addressed agents",
	Long: "virtualco simulates a software company as a message-passing organization: " +
		"agents addressed by role, a routing bus and tick-driven workflows.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
}
