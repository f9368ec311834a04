package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/astroprop/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	dt         float64
	duration   float64
	startDate  string
	endDate    string
	ephemFile  string
	configFile string
	preset     string
	basePreset string
	integrator string
	workers    int
	strict     bool
	body       string
	center     string
	outFile    string

	settings = viper.New()
	logger   = log.NewNopLogger()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "astroprop",
		Short:         "n-body trajectory propagator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindRunFlags(cmd)
			dataDir = settings.GetString("data")
			logger = newLogger(settings.GetString("log-level"))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".astroprop", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [bodies...]",
		Short: "propagate bodies and store the trajectory",
		RunE:  runPropagation,
	}
	addRunFlags(runCmd)
	addConfigFlags(runCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [bodies...]",
		Short: "compare leapfrog against forward euler",
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().StringVar(&basePreset, "preset", "sun-earth", "preset providing initial states")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export trajectory as {bodies, trajectories} JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbit statistics and period estimate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addBodyFlags(analyzeCmd)

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot radial distance and top-down orbits",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addBodyFlags(plotCmd)

	bodiesCmd := &cobra.Command{
		Use:   "bodies",
		Short: "list bodies in the constants table",
		RunE:  listBodies,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	horizonsCmd := &cobra.Command{
		Use:   "horizons [table.txt...]",
		Short: "convert saved horizons vector tables into an ephemeris document",
		Args:  cobra.MinimumNArgs(1),
		RunE:  convertHorizons,
	}
	horizonsCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export top-down orbits as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&center, "center", "Sun", "central body (empty for the propagation frame)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image width and height in pixels")
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of propagations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [bodies...]",
		Short: "compare energy drift across step sizes",
		RunE:  sweepStepSize,
	}
	addRunFlags(sweepCmd)
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepSteps, "steps", []float64{600, 1800, 3600, 7200, 21600, 86400}, "step sizes in seconds")
	sweepCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "energy drift tolerance")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [bodies...]",
		Short: "propagate randomly perturbed initial velocities",
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 32, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.5, "velocity noise half-width (km/s)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 for time based)")

	rootCmd.AddCommand(runCmd, compareCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		analyzeCmd, plotCmd, bodiesCmd, presetsCmd, horizonsCmd, batchCmd, sweepCmd, monteCarloCmd)

	bindSettings(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "step size in seconds (default 3600)")
	cmd.Flags().Float64Var(&duration, "time", 0, "run time in seconds (default one year)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (leapfrog, verlet, euler)")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per acceleration evaluation")
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject bodies missing from the constants table")
	cmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ephemFile, "ephemeris", "", "ephemeris document or directory of horizons tables")
}

func addBodyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&body, "body", "Earth", "body to analyze")
	cmd.Flags().StringVar(&center, "center", "Sun", "central body (empty for the propagation frame)")
}

// bindSettings exposes the persistent flags to ASTROPROP_* environment
// variables. Flags win over the environment.
func bindSettings(root *cobra.Command) {
	settings.SetEnvPrefix("ASTROPROP")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	for _, name := range []string{"data", "log-level"} {
		_ = settings.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}
}

// bindRunFlags binds the run parameters of the command being executed.
func bindRunFlags(cmd *cobra.Command) {
	for _, name := range []string{"dt", "time", "integrator", "workers", "ephemeris", "strict"} {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = settings.BindPFlag(name, f)
		}
	}
}

func newLogger(lvl string) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = level.NewFilter(l, level.Allow(level.ParseDefault(lvl, level.InfoValue())))
	return log.With(l, "ts", log.DefaultTimestampUTC)
}
