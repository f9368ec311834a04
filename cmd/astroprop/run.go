package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/analysis"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/ephemeris"
	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/metrics"
	"github.com/san-kum/astroprop/internal/physics"
	"github.com/san-kum/astroprop/internal/sim"
	"github.com/san-kum/astroprop/internal/storage"
	"github.com/san-kum/astroprop/internal/viz"
)

// resolveConfig layers defaults, preset, config file, environment and
// flags, in increasing precedence. Positional bodies replace the body list.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if settings.IsSet("dt") {
		cfg.StepSize = settings.GetFloat64("dt")
	}
	if settings.IsSet("time") {
		cfg.RunTime = settings.GetFloat64("time")
		cfg.Start, cfg.End = "", ""
	}
	if settings.IsSet("integrator") {
		cfg.Integrator = settings.GetString("integrator")
	}
	if settings.IsSet("workers") {
		cfg.Workers = settings.GetInt("workers")
	}
	if settings.IsSet("ephemeris") {
		cfg.Ephemeris = settings.GetString("ephemeris")
	}
	if settings.IsSet("strict") {
		cfg.Strict = settings.GetBool("strict")
	}
	if cmd.Flags().Changed("start") {
		cfg.Start = startDate
	}
	if cmd.Flags().Changed("end") {
		cfg.End = endDate
	}
	if len(args) > 0 {
		cfg.Bodies = args
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSamples merges inline initial states with the configured ephemeris
// source. Ephemeris samples win.
func loadSamples(ctx context.Context, cfg *config.Config) (ephemeris.Samples, error) {
	samples, err := cfg.Samples()
	if err != nil {
		return nil, err
	}
	if cfg.Ephemeris == "" {
		return samples, nil
	}

	var provider ephemeris.Provider
	info, err := os.Stat(cfg.Ephemeris)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		provider = &ephemeris.HorizonsDir{Dir: cfg.Ephemeris, Logger: log.With(logger, "component", "ephemeris")}
	} else {
		provider = ephemeris.NewFileProvider(cfg.Ephemeris)
	}

	loaded, err := provider.Samples(ctx, cfg.Bodies)
	if err != nil {
		return nil, fmt.Errorf("load ephemeris: %w", err)
	}
	for id, list := range loaded {
		samples[id] = list
	}
	return samples, nil
}

func initialize(ctx context.Context, cfg *config.Config) ([]dynamo.Body, dynamo.SystemState, error) {
	samples, err := loadSamples(ctx, cfg)
	if err != nil {
		return nil, dynamo.SystemState{}, err
	}

	in := &ephemeris.Initializer{
		Constants: constants.Default(log.With(logger, "component", "constants")),
		Logger:    log.With(logger, "component", "initializer"),
		Strict:    cfg.Strict,
	}
	return in.Initialize(cfg.Bodies, samples)
}

func propagate(bodies []dynamo.Body, x0 dynamo.SystemState, cfg dynamo.Config, stepper dynamo.Stepper) (*dynamo.Result, error) {
	model := physics.NewGravity()

	s := sim.New(model, stepper, logger)
	s.AddMetric(metrics.NewEnergyDrift(model))
	s.AddMetric(metrics.NewAngularMomentumDrift())
	if r := boundingRadius(x0); r > 0 {
		s.AddMetric(metrics.NewBounded(r))
	}

	return s.Run(bodies, x0, cfg)
}

// execute runs one resolved configuration end to end without storing it.
func execute(ctx context.Context, cfg *config.Config) (*dynamo.Result, error) {
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	bodies, x0, err := initialize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return propagate(bodies, x0, simCfg, stepper)
}

// boundingRadius is ten times the largest initial distance from the first
// body.
func boundingRadius(x dynamo.SystemState) float64 {
	r := 0.0
	for _, p := range x.Positions {
		if d := r3.Norm(r3.Sub(p, x.Positions[0])); d > r {
			r = d
		}
	}
	return 10 * r
}

func runPropagation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	stepper, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return err
	}

	bodies, x0, err := initialize(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	level.Info(logger).Log("msg", "propagating", "bodies", strings.Join(cfg.Bodies, ","), "steps", simCfg.NumSteps())
	start := time.Now()

	result, err := propagate(bodies, x0, simCfg, stepper)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	label := preset
	if label == "" {
		label = strings.ToLower(strings.Join(cfg.Bodies, "-"))
	}

	runID, err := st.Save(storage.RunInfo{
		Label:      label,
		Integrator: cfg.Integrator,
		StepSize:   simCfg.StepSize,
		RunTime:    simCfg.RunTime,
		Start:      cfg.Start,
		End:        cfg.End,
		Workers:    cfg.Workers,
	}, result)
	if err != nil {
		return err
	}

	fmt.Println(viz.RunSummary("propagation complete", []viz.Field{
		{Label: "run id", Value: runID},
		{Label: "bodies", Value: strings.Join(cfg.Bodies, ", ")},
		{Label: "integrator", Value: cfg.Integrator},
		{Label: "step size", Value: fmt.Sprintf("%g s", simCfg.StepSize)},
		{Label: "steps", Value: strconv.Itoa(result.StepsTaken)},
		{Label: "span", Value: fmt.Sprintf("%.2f days", simCfg.RunTime/constants.SecondsPerDay)},
		{Label: "elapsed", Value: elapsed.Round(time.Millisecond).String()},
	}, result.Metrics))

	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(basePreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", basePreset, config.ListPresets())
	}
	if cmd.Flags().Changed("dt") {
		cfg.StepSize = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.RunTime = duration
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if len(args) > 0 {
		cfg.Bodies = args
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	simCfg, err := cfg.SimConfig()
	if err != nil {
		return err
	}

	bodies, x0, err := initialize(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	names := []string{"leapfrog", "euler"}
	if cmd.Flags().Changed("integrator") && integrator != "leapfrog" {
		names[1] = integrator
	}

	results := make([]*dynamo.Result, len(names))
	for i, name := range names {
		stepper, err := integrators.Get(name)
		if err != nil {
			return err
		}
		results[i], err = propagate(bodies, x0, simCfg, stepper)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	t := newTable("INTEGRATOR", "ENERGY DRIFT", "ANGULAR MOMENTUM DRIFT")
	for i, name := range names {
		t.Row(name,
			viz.DriftBadge(results[i].Metrics["energy_drift"]),
			viz.DriftBadge(results[i].Metrics["angular_momentum_drift"]))
	}
	fmt.Println(t.Render())

	target := bodies[len(bodies)-1].Name
	sep, err := analysis.Separation(results[0].Trajectory, results[1].Trajectory, target)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s separation (%s vs %s)\n", target, names[0], names[1])
	fmt.Println(viz.SparklineChart(sep, 60))
	fmt.Printf("final: %.4e km\n", sep[len(sep)-1])

	if rate, err := analysis.DivergenceRate(sep, simCfg.StepSize); err == nil {
		fmt.Printf("divergence rate: %.4e 1/day\n", rate*constants.SecondsPerDay)
	}

	return nil
}
