package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/navsim/internal/logging"
)

var (
	dataDir string
	debug   bool
	logger  *zap.SugaredLogger
)

// main registers the navsim commands and exits with status 1 when one fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "navsim",
		Short:        "simulated mobile robot navigation lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.NewLogger("navsim", debug)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".navsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a navigation scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator...]",
		Short: "run one scenario with several integrators",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search over controller gains",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneGains,
	}
	addScenarioFlags(tuneCmd)
	tuneCmd.Flags().StringArray("grid", []string{"kpx=1,2,4", "kpy=1,2,4"}, "gain values to try, name=v1,v2,...")
	tuneCmd.Flags().String("metric", "tracking_error", "metric to minimise")
	tuneCmd.Flags().Int("workers", 0, "concurrent runs (0 = unlimited)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringP("output", "o", "", "output file (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, tuneCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, presetsCmd)
	return rootCmd
}
