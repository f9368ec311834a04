package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/analysis"
	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/export"
	"github.com/san-kum/astroprop/internal/storage"
	"github.com/san-kum/astroprop/internal/viz"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(viz.Subtle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return viz.Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	t := newTable("ID", "BODIES", "TIME", "SPAN", "DT", "INTEG", "DRIFT")
	for _, run := range runs {
		t.Row(
			run.ID,
			strings.Join(run.Bodies, ","),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.1fd", run.RunTime/constants.SecondsPerDay),
			fmt.Sprintf("%gs", run.StepSize),
			run.Integrator,
			viz.DriftBadge(run.EnergyDrift),
		)
	}

	fmt.Println(t.Render())
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// output returns the -o file, or stdout. The close func is always safe to
// call.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, traj); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d snapshots to %s\n", traj.Len(), outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, traj)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, traj); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func loadRelative(runID string) (*storage.RunMetadata, *dynamo.Trajectory, []r3.Vec, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	rel, err := analysis.RelativeSeries(traj, body, center)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w (run has %s)", err, strings.Join(traj.Bodies, ", "))
	}
	return meta, traj, rel, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, rel, err := loadRelative(args[0])
	if err != nil {
		return err
	}

	stats, err := analysis.Orbit(rel)
	if err != nil {
		return err
	}

	fields := []viz.Field{
		{Label: "run", Value: meta.ID},
		{Label: "body", Value: fmt.Sprintf("%s about %s", body, centerName())},
		{Label: "samples", Value: fmt.Sprint(traj.Len())},
		{Label: "min radius", Value: fmt.Sprintf("%.6e km", stats.MinRadius)},
		{Label: "max radius", Value: fmt.Sprintf("%.6e km", stats.MaxRadius)},
		{Label: "mean radius", Value: fmt.Sprintf("%.6e km (%.4f AU)", stats.MeanRadius, constants.KmToAU(stats.MeanRadius))},
		{Label: "eccentricity", Value: fmt.Sprintf("%.5f", stats.Eccentricity)},
	}

	x := analysis.Component(rel, 0)
	if period, err := analysis.DominantPeriod(x, traj.StepSize); err == nil {
		fields = append(fields, viz.Field{Label: "fft period", Value: days(period)})
	} else {
		fields = append(fields, viz.Field{Label: "fft period", Value: "n/a"})
	}
	if period, err := analysis.CrossingPeriod(rel, traj.StepSize); err == nil {
		fields = append(fields, viz.Field{Label: "crossing period", Value: days(period)})
	}

	fmt.Println(viz.RunSummary("orbit analysis", fields, nil))
	fmt.Println()
	fmt.Println(viz.SpectrumChart(analysis.PowerSpectrum(x), 64, 12, "power spectrum of x (low bins)"))

	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, rel, err := loadRelative(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", traj.Len())

	caption := fmt.Sprintf("%s distance from %s (km)", body, centerName())
	fmt.Println(viz.RadiusChart(analysis.Radii(rel), 80, 12, caption))
	fmt.Println()

	series, legend, err := relativeOrbits(traj, true)
	if err != nil {
		return err
	}

	fmt.Println(viz.Panel.Render(analysis.OrbitPlot(series, 72, 28)))
	fmt.Println(viz.Subtle.Render("• o * x: " + strings.Join(legend, ", ") + "   +: " + centerName()))

	return nil
}

// relativeOrbits returns every body's positions relative to --center. The
// center itself is skipped, or reduced to its first sample when kept.
func relativeOrbits(traj *dynamo.Trajectory, skipCenter bool) ([][]r3.Vec, []string, error) {
	series := make([][]r3.Vec, 0, traj.NumBodies())
	legend := make([]string, 0, traj.NumBodies())
	for _, name := range traj.Bodies {
		if name == center && skipCenter {
			continue
		}
		s, err := analysis.RelativeSeries(traj, name, center)
		if err != nil {
			return nil, nil, err
		}
		if name == center {
			s = s[:1]
		}
		series = append(series, s)
		legend = append(legend, name)
	}
	return series, legend, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	series, legend, err := relativeOrbits(traj, false)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := export.WriteSVG(w, series, legend, svgSize, svgSize); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func centerName() string {
	if center == "" {
		return "origin"
	}
	return center
}

func days(seconds float64) string {
	return fmt.Sprintf("%.3f days", seconds/constants.SecondsPerDay)
}
