package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayuer/virtualco/internal/config"
	"github.com/dayuer/virtualco/internal/console"
	"github.com/dayuer/virtualco/internal/metrics"
	"github.com/dayuer/virtualco/internal/scenario"
	"github.com/dayuer/virtualco/internal/scheduler"
	"github.com/dayuer/virtualco/internal/utils"
	"github.com/dayuer/virtualco/internal/workflow"
)

var (
	runConfigPath  string
	runTicks       int
	runSeed        int64
	runInterval    time.Duration
	runPolicy      string
	runRoster      string
	runScenario    string
	runStallTicks  int
	runMetrics     bool
	runNoColor     bool
	runActivityDir string
	runQuiet       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the company simulation",
	RunE:  runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runConfigPath, "config", "c", "", "Config file, .json or .toml (default ~/.virtualco/config.json)")
	f.IntVarP(&runTicks, "ticks", "t", 0, "Tick budget (overrides config)")
	f.Int64Var(&runSeed, "seed", 0, "Seed for the agent shuffle (overrides config)")
	f.DurationVarP(&runInterval, "interval", "i", -1, "Wall-clock time per tick, 0 to run flat out (overrides config)")
	f.StringVar(&runPolicy, "policy", "", "Category selection policy: round-robin, least-loaded or affinity")
	f.StringVar(&runRoster, "roster", "", "Roster YAML (default: built-in company)")
	f.StringVar(&runScenario, "scenario", "", "Scenario YAML file or directory (default: built-in day)")
	f.IntVar(&runStallTicks, "stall-ticks", 0, "Idle ticks before an unfinished workflow is reported stalled")
	f.BoolVar(&runMetrics, "metrics", false, "Print Prometheus metrics when the run ends")
	f.BoolVar(&runNoColor, "no-color", false, "Plain banners")
	f.StringVar(&runActivityDir, "activity-dir", "", "Write each agent's activity log under this directory")
	f.BoolVarP(&runQuiet, "quiet", "q", false, "Only print banners, not the message log")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overlays explicitly set flags on the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Simulation.MaxTicks = runTicks
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = runSeed
	}
	if flags.Changed("interval") {
		cfg.Simulation.TickInterval = runInterval.String()
	}
	if flags.Changed("policy") {
		cfg.Simulation.Policy = runPolicy
	}
	if flags.Changed("stall-ticks") {
		cfg.Simulation.StallTicks = runStallTicks
	}
	if runMetrics {
		cfg.Output.Metrics = true
	}
	if runNoColor {
		cfg.Output.NoColor = true
	}
	if runActivityDir != "" {
		cfg.Output.ActivityDir = runActivityDir
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath, runRoster, runScenario)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	interval, _ := cfg.Simulation.Interval()

	out := cmd.OutOrStdout()
	var logWriter io.Writer = out
	if runQuiet {
		logWriter = io.Discard
	}
	logger := log.New(logWriter, "", 0)

	company, err := buildCompany(cfg, logger)
	if err != nil {
		return err
	}
	sc, err := scenario.Load(utils.ExpandHome(cfg.Org.ScenarioPath), logger)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Output.Metrics {
		m = metrics.New()
	}
	engine := scheduler.New(company, workflow.Default(company.Bus), sc, m,
		console.New(out, cfg.Output.NoColor),
		scheduler.Options{
			MaxTicks:    cfg.Simulation.MaxTicks,
			Interval:    interval,
			Seed:        cfg.Simulation.Seed,
			StallTicks:  cfg.Simulation.StallTicks,
			ActivityDir: cfg.Output.ActivityDir,
		}, logger)
	engine.Preflight()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := engine.Run(ctx); err != nil {
		return err
	}
	if m != nil {
		return m.WritePrometheus(out)
	}
	return nil
}
