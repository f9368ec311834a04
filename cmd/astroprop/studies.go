package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/astroprop/internal/automation"
	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/storage"
	"github.com/san-kum/astroprop/internal/viz"
)

var (
	sweepSteps   []float64
	tolerance    float64
	trials       int
	perturbation float64
	seed         int64
	svgSize      int
)

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), scenario, execute, logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	t := newTable("#", "BODIES", "INTEGRATOR", "STEPS", "ENERGY DRIFT", "RUN ID")
	for i, result := range results {
		step := scenario.Steps[i]
		cfg, err := step.Config()
		if err != nil {
			return err
		}

		runID := "-"
		if step.SaveAs != "" {
			simCfg, err := cfg.SimConfig()
			if err != nil {
				return err
			}
			runID, err = st.Save(storage.RunInfo{
				Label:      step.SaveAs,
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
		}

		t.Row(strconv.Itoa(i+1), strings.Join(cfg.Bodies, ","), cfg.Integrator,
			strconv.Itoa(result.StepsTaken), viz.DriftBadge(result.EnergyDrift), runID)
	}

	fmt.Println(viz.Title.Render(scenario.Name))
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}
	fmt.Println(t.Render())
	return nil
}

func sweepStepSize(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), cfg, sweepSteps, execute, logger)
	if err != nil {
		return err
	}

	t := newTable("STEP SIZE", "STEPS", "ENERGY DRIFT")
	for _, r := range results {
		if r.Err != nil {
			t.Row(fmt.Sprintf("%g s", r.StepSize), "-", viz.ErrorStyle.Render(r.Err.Error()))
			continue
		}
		t.Row(fmt.Sprintf("%g s", r.StepSize), strconv.Itoa(r.Steps), viz.DriftBadge(r.EnergyDrift))
	}
	fmt.Println(t.Render())

	if best, ok := automation.LargestStable(results, tolerance); ok {
		fmt.Printf("largest step within %.0e: %g s\n", tolerance, best)
	} else {
		fmt.Printf("no step size keeps drift within %.0e\n", tolerance)
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
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

	mc := &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
		Workers:      cfg.Workers,
		EscapeRadius: boundingRadius(x0),
	}
	// trials already run concurrently
	inner := simCfg
	inner.Workers = 0

	results, err := automation.RunMonteCarlo(cmd.Context(), mc, bodies, x0,
		func(_ context.Context, bodies []dynamo.Body, x dynamo.SystemState, _ *config.Config) (*dynamo.Result, error) {
			stepper, err := integrators.Get(cfg.Integrator)
			if err != nil {
				return nil, err
			}
			return propagate(bodies, x, inner, stepper)
		}, logger)
	if err != nil {
		return err
	}

	stable, unstable, failed := automation.MonteCarloStats(results)
	worst := 0.0
	for _, r := range results {
		if r.Err == nil && r.EnergyDrift > worst {
			worst = r.EnergyDrift
		}
	}

	fmt.Println(viz.RunSummary("monte carlo", []viz.Field{
		{Label: "bodies", Value: strings.Join(cfg.Bodies, ", ")},
		{Label: "trials", Value: strconv.Itoa(trials)},
		{Label: "perturbation", Value: fmt.Sprintf("±%g km/s", perturbation)},
		{Label: "span", Value: fmt.Sprintf("%.2f days", simCfg.RunTime/constants.SecondsPerDay)},
		{Label: "escape radius", Value: fmt.Sprintf("%.4e km", mc.EscapeRadius)},
		{Label: "stable", Value: strconv.Itoa(stable)},
		{Label: "unstable", Value: strconv.Itoa(unstable)},
		{Label: "failed", Value: strconv.Itoa(failed)},
	}, map[string]float64{"worst_energy_drift": worst}))
	return nil
}
